package integrators

import (
	"math"
	"testing"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oscillator is x' = y, y' = -x.
type oscillator struct{}

func (oscillator) Derive(v, dv dynamo.State) {
	dv[0] = v[1]
	dv[1] = -v[0]
}

func (oscillator) Dim() int { return 2 }

func integrate(integ dynamo.Integrator, steps int, dt float64) dynamo.State {
	v := dynamo.State{1, 0}
	out := make(dynamo.State, 2)
	for i := 0; i < steps; i++ {
		integ.Step(oscillator{}, v, dt, out)
		v, out = out, v
	}
	return v
}

func TestRK4Accuracy(t *testing.T) {
	x := integrate(NewRK4(), 100, 0.01)

	expectedX := math.Cos(1)
	expectedV := -math.Sin(1)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestOrderOfAccuracy(t *testing.T) {
	errAt := func(f Factory, steps int) float64 {
		x := integrate(f(), steps, 1/float64(steps))
		return math.Hypot(x[0]-math.Cos(1), x[1]+math.Sin(1))
	}

	tests := []struct {
		name  string
		order float64
	}{
		{"euler", 1},
		{"heun", 2},
		{"rk4", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Lookup(tt.name)
			require.NoError(t, err)
			ratio := errAt(f, 50) / errAt(f, 100)
			assert.InDelta(t, math.Pow(2, tt.order), ratio, 0.25*math.Pow(2, tt.order))
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("verlet")
	require.Error(t, err)
	assert.Equal(t, []string{"euler", "heun", "rk4"}, Names())
}

func TestModelWithRK4(t *testing.T) {
	g, err := graph.Cycle(4)
	require.NoError(t, err)

	opt, err := Option("rk4")
	require.NoError(t, err)
	m, err := dynamo.NewModel(g, opt, dynamo.WithScale(0.01))
	require.NoError(t, err)
	assert.Equal(t, "rk4", m.IntegratorName())

	euler, err := dynamo.NewModel(g, dynamo.WithScale(0.01))
	require.NoError(t, err)

	v0 := dynamo.State{0.3, 0.1, -0.4, 0.2}
	a := m.Propagate(v0, 50, nil)
	b := euler.Propagate(v0, 50, nil)
	for i := range a {
		// Both approximate the same flow; they differ at O(dt).
		assert.InDelta(t, a[i], b[i], 0.05)
		assert.NotEqual(t, a[i], b[i])
	}
}
