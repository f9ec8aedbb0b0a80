package dynamo

import (
	"math"
)

// Period is the width of the periodic domain the state lives on.
const Period = 4.0

// Fold maps x into the canonical interval [-2, 2).
func Fold(x float64) float64 {
	r := x - Period*math.Floor((x+Period/2)/Period)
	if r >= Period/2 {
		r -= Period
	}
	return r
}

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Fold canonicalizes every component in place and returns s.
func (s State) Fold() State {
	for i, v := range s {
		s[i] = Fold(v)
	}
	return s
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) SquaredNorm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return sum
}

// AddScaled performs s += h·dv in place and returns s.
func (s State) AddScaled(dv State, h float64) State {
	for i := range s {
		s[i] += h * dv[i]
	}
	return s
}

// Distance is the Euclidean distance on the torus: every component
// difference is folded before squaring.
func (s State) Distance(other State) float64 {
	sum := 0.0
	for i := range s {
		d := Fold(s[i] - other[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// System is anything that can fill in the rate of change of a state.
type System interface {
	Derive(v State, dv State)
	Dim() int
}

// Integrator advances v by one step of size dt, writing the result to out.
// Implementations may keep scratch buffers and are not safe for concurrent use.
type Integrator interface {
	Step(sys System, v State, dt float64, out State)
}

// Observer is notified after every integration step. gradSq is the squared
// norm of the effective rate (out − v) / dt.
type Observer interface {
	OnStep(step int, v State, gradSq float64)
}

// Euler is the explicit forward step v + dt·f(v).
type Euler struct {
	dv State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, v State, dt float64, out State) {
	if len(e.dv) != len(v) {
		e.dv = make(State, len(v))
	}
	sys.Derive(v, e.dv)
	copy(out, v)
	out.AddScaled(e.dv, dt)
}
