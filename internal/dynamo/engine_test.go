package dynamo

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourCycle(t testing.TB) *graph.Graph {
	t.Helper()
	g, err := graph.Cycle(4)
	require.NoError(t, err)
	return g
}

func randomState(rng *rand.Rand, n int, width float64) State {
	v := make(State, n)
	for i := range v {
		v[i] = width * (2*rng.Float64() - 1)
	}
	return v
}

// differenceCoupling is a non-kernel Coupling used to exercise the generic path.
type differenceCoupling struct{}

func (differenceCoupling) Pair(v1, v2 float64) float64 { return v1 - v2 }
func (differenceCoupling) Local(v float64) float64     { return 2 * v }

func TestNewModelDefaults(t *testing.T) {
	g := fourCycle(t)
	m, err := NewModel(g)
	require.NoError(t, err)

	assert.Same(t, g, m.Graph())
	assert.Equal(t, Sine, m.Coupling())
	assert.Equal(t, 0.5, m.Scale())
	assert.Equal(t, 0.0, m.Anisotropy())
	assert.Equal(t, 0.0, m.Noise())
	assert.Equal(t, logging.DefaultVerbosity, m.Verbosity())
	assert.Equal(t, "euler", m.IntegratorName())
	assert.Equal(t, 4, m.Dim())
}

func TestNewModelRejectsBadParameters(t *testing.T) {
	g := fourCycle(t)
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero scale", []Option{WithScale(0)}},
		{"negative scale", []Option{WithScale(-0.1)}},
		{"nan scale", []Option{WithScale(math.NaN())}},
		{"negative noise", []Option{WithNoise(-1)}},
		{"infinite anisotropy", []Option{WithAnisotropy(math.Inf(1))}},
		{"nil coupling", []Option{WithCoupling(nil)}},
		{"negative divergence", []Option{WithDivergenceFactor(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(g, tt.opts...)
			require.ErrorIs(t, err, ErrParameterBounds)
		})
	}

	_, err := NewModel(nil)
	require.ErrorIs(t, err, ErrNilGraph)
}

func TestTunedCopiesModel(t *testing.T) {
	m, err := NewModel(fourCycle(t), WithCoupling(Triangular))
	require.NoError(t, err)

	tuned, err := m.Tuned(0.1, logging.Trace)
	require.NoError(t, err)
	assert.Equal(t, 0.1, tuned.Scale())
	assert.Equal(t, logging.Trace, tuned.Verbosity())
	assert.Equal(t, 0.5, m.Scale())
	assert.Same(t, m.Graph(), tuned.Graph())

	_, err = m.Tuned(0, logging.Trace)
	require.ErrorIs(t, err, ErrParameterBounds)
}

func TestDeriveFourCycle(t *testing.T) {
	m, err := NewModel(fourCycle(t))
	require.NoError(t, err)

	dv := m.Rate(State{0, 1, 0, 1})
	assert.InDelta(t, -2.0, dv[0], 1e-12)
	assert.InDelta(t, 2.0, dv[1], 1e-12)
	assert.InDelta(t, -2.0, dv[2], 1e-12)
	assert.InDelta(t, 2.0, dv[3], 1e-12)

	// Antiphase neighbours sit at a fixed point of the sine coupling.
	dv = m.Rate(State{0, -2, 0, -2})
	for i := range dv {
		assert.InDelta(t, 0.0, dv[i], 1e-12)
	}
}

func TestDeriveWeightedAndAnisotropic(t *testing.T) {
	b := graph.NewBuilder(3)
	require.NoError(t, b.AddEdge(0, 1, 2))
	require.NoError(t, b.AddEdge(1, 2, 0.5))
	g := b.Build()

	m, err := NewModel(g, WithCoupling(Triangular), WithAnisotropy(0.5))
	require.NoError(t, err)

	v := State{0.25, 0, -0.5}
	dv := m.Rate(v)
	// node 0: 2·F(0.25) + 0.5·F(0.5)
	assert.InDelta(t, 2*0.25+0.5*0.5, dv[0], 1e-12)
	// node 1: 2·F(−0.25) + 0.5·F(0.5)
	assert.InDelta(t, -0.5+0.25, dv[1], 1e-12)
	// node 2: 0.5·F(−0.5) + 0.5·F(−1)
	assert.InDelta(t, -0.25-0.5, dv[2], 1e-12)
}

func TestDeriveGenericCoupling(t *testing.T) {
	m, err := NewModel(fourCycle(t), WithCoupling(differenceCoupling{}), WithAnisotropy(1))
	require.NoError(t, err)

	dv := m.Rate(State{1, 0, 0, 0})
	assert.InDelta(t, 2+2, dv[0], 1e-12)
	assert.InDelta(t, -1, dv[1], 1e-12)
	assert.InDelta(t, 0, dv[2], 1e-12)
	assert.InDelta(t, -1, dv[3], 1e-12)
}

func TestDeriveParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g, err := graph.RandomRegular(3*parallelChunk, 3, rng)
	require.NoError(t, err)
	m, err := NewModel(g, WithAnisotropy(0.3))
	require.NoError(t, err)

	v := randomState(rng, g.N(), 2)
	got := m.Rate(v)
	want := make(State, g.N())
	m.deriveRange(v, want, 0, g.N())
	assert.Equal(t, want, got)
}

func TestPropagateSteps(t *testing.T) {
	m, err := NewModel(fourCycle(t))
	require.NoError(t, err)

	v0 := State{0.1, -0.2, 0.3, 0.05}
	assert.Equal(t, v0, m.Propagate(v0, 1, nil))

	one := m.Propagate(v0, 2, nil)
	want := v0.Clone().AddScaled(m.Rate(v0), m.Scale())
	for i := range want {
		assert.InDelta(t, want[i], one[i], 1e-15)
	}
	assert.Equal(t, State{0.1, -0.2, 0.3, 0.05}, v0, "input must not change")
}

func TestPropagateSeparatesNeighbours(t *testing.T) {
	g, err := graph.Cycle(6)
	require.NoError(t, err)
	m, err := NewModel(g, WithScale(0.1))
	require.NoError(t, err)

	v := m.Propagate(State{0.1, -0.1, 0.2, -0.05, 0.15, -0.2}, 400, nil)
	for _, e := range g.Edges() {
		assert.InDelta(t, 2.0, math.Abs(Fold(v[e.U]-v[e.V])), 1e-3)
	}
}

func TestTrajectoriesMatchPropagate(t *testing.T) {
	m, err := NewModel(fourCycle(t), WithCoupling(Squarish))
	require.NoError(t, err)

	v0 := State{0.3, 0.1, -0.4, 0.2}
	traj := m.Trajectories(v0, 25, nil)
	require.Len(t, traj, 25)
	assert.Equal(t, v0, traj[0])
	assert.Equal(t, m.Propagate(v0, 25, nil), traj[24])
}

func TestNoiseIsSeeded(t *testing.T) {
	m, err := NewModel(fourCycle(t), WithNoise(0.05))
	require.NoError(t, err)

	v0 := State{0.3, 0.1, -0.4, 0.2}
	a := m.Propagate(v0, 20, rand.New(rand.NewSource(3)))
	b := m.Propagate(v0, 20, rand.New(rand.NewSource(3)))
	quiet := m.Propagate(v0, 20, nil)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, quiet)
}

type countingObserver struct {
	steps  int
	maxSq  float64
	lastAt int
}

func (c *countingObserver) OnStep(step int, _ State, gradSq float64) {
	c.steps++
	c.lastAt = step
	if gradSq > c.maxSq {
		c.maxSq = gradSq
	}
}

func TestObserversAndDivergenceWarning(t *testing.T) {
	var buf bytes.Buffer
	m, err := NewModel(fourCycle(t),
		WithLogger(logging.NewText(&buf, 0)),
		WithDivergenceFactor(1e-6),
	)
	require.NoError(t, err)

	obs := &countingObserver{}
	v := m.Propagate(State{0.3, 0.1, -0.4, 0.2}, 30, nil, obs)
	assert.True(t, v.IsValid())
	assert.Equal(t, 29, obs.steps)
	assert.Equal(t, 29, obs.lastAt)
	assert.Greater(t, obs.maxSq, 0.0)
	assert.Equal(t, 1, strings.Count(buf.String(), "large gradient"))
}
