package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolverCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSolver(reg)

	s.ObserveRound(OutcomeImproved, 20*time.Millisecond, 8)
	s.ObserveRound(OutcomeStalled, 10*time.Millisecond, 9)
	s.SetBestCut(42)
	s.ObserveRefine("node", 3)
	s.ObserveRefine("edge", 2)
	s.ObserveDivergent()

	assert.Equal(t, 1.0, testutil.ToFloat64(s.rounds.WithLabelValues(OutcomeImproved)))
	assert.Equal(t, 17.0, testutil.ToFloat64(s.trials))
	assert.Equal(t, 42.0, testutil.ToFloat64(s.bestCut))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.refineFlips.WithLabelValues("node")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.divergent))

	expected := `
# HELP dice_rounds_total Search rounds by outcome
# TYPE dice_rounds_total counter
dice_rounds_total{outcome="improved"} 1
dice_rounds_total{outcome="stalled"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dice_rounds_total"))

	n, err := testutil.GatherAndCount(reg, "dice_round_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilSolverIsNoop(t *testing.T) {
	var s *Solver
	assert.NotPanics(t, func() {
		s.ObserveRound(OutcomeCanceled, time.Second, 1)
		s.SetBestCut(1)
		s.ObserveRefine("node", 1)
		s.ObserveDivergent()
	})
}

func TestSolverRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSolver(reg)
	assert.Panics(t, func() { NewSolver(reg) })
}
