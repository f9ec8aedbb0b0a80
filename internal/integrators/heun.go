package integrators

import "github.com/merement/Dice/internal/dynamo"

// Heun is the explicit trapezoidal (improved Euler) step.
type Heun struct {
	k1, k2  dynamo.State
	predict dynamo.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Step(sys dynamo.System, v dynamo.State, dt float64, out dynamo.State) {
	n := len(v)
	if len(h.k1) != n {
		h.k1 = make(dynamo.State, n)
		h.k2 = make(dynamo.State, n)
		h.predict = make(dynamo.State, n)
	}

	sys.Derive(v, h.k1)
	for i := 0; i < n; i++ {
		h.predict[i] = v[i] + dt*h.k1[i]
	}
	sys.Derive(h.predict, h.k2)

	half := dt / 2
	for i := 0; i < n; i++ {
		out[i] = v[i] + half*(h.k1[i]+h.k2[i])
	}
}
