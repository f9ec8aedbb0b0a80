// Package metrics observes the dynamics while it runs and exports solver
// progress to Prometheus.
package metrics

import "github.com/merement/Dice/internal/dynamo"

// Metric is a per-run observer reduced to a single number. Implementations
// are not safe for concurrent use; give every trial its own.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}
