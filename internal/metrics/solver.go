package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dice"

// Round outcomes used as the "outcome" label.
const (
	OutcomeImproved = "improved"
	OutcomeStalled  = "stalled"
	OutcomeCanceled = "canceled"
)

// Solver holds the Prometheus collectors updated by the search loop. A nil
// *Solver is valid and records nothing.
type Solver struct {
	rounds        *prometheus.CounterVec
	trials        prometheus.Counter
	bestCut       prometheus.Gauge
	roundDuration prometheus.Histogram
	refineFlips   *prometheus.CounterVec
	divergent     prometheus.Counter
}

// NewSolver registers the solver collectors with reg. Passing
// prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewSolver(reg prometheus.Registerer) *Solver {
	f := promauto.With(reg)
	return &Solver{
		rounds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Search rounds by outcome",
		}, []string{"outcome"}),
		trials: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Propagate-and-round trials run",
		}),
		bestCut: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_cut",
			Help:      "Best cut value found so far",
		}),
		roundDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Duration of one search round",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		refineFlips: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refine_flips_total",
			Help:      "Spins flipped by local search, by operator",
		}, []string{"operator"}),
		divergent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "divergent_trials_total",
			Help:      "Trials whose rate norm exceeded the divergence limit",
		}),
	}
}

func (s *Solver) ObserveRound(outcome string, d time.Duration, trials int) {
	if s == nil {
		return
	}
	s.rounds.WithLabelValues(outcome).Inc()
	s.roundDuration.Observe(d.Seconds())
	s.trials.Add(float64(trials))
}

func (s *Solver) SetBestCut(cut float64) {
	if s == nil {
		return
	}
	s.bestCut.Set(cut)
}

// ObserveRefine adds flips made by the named operator ("node" or "edge").
func (s *Solver) ObserveRefine(operator string, flips int) {
	if s == nil {
		return
	}
	s.refineFlips.WithLabelValues(operator).Add(float64(flips))
}

func (s *Solver) ObserveDivergent() {
	if s == nil {
		return
	}
	s.divergent.Inc()
}
