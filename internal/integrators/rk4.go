package integrators

import "github.com/merement/Dice/internal/dynamo"

// rk4Nodes are the stage offsets c_s of the classical tableau; stage s
// evaluates the rate at v + c_s·dt·k_{s-1}.
var rk4Nodes = [4]float64{0, 0.5, 0.5, 1}

// RK4 is the classical fourth-order Runge-Kutta step. It costs four rate
// evaluations per step and is used to check how far the Euler relaxation
// drifts from the exact flow.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for s := range r.k {
		r.k[s] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

// Step is safe with out aliasing v.
func (r *RK4) Step(sys dynamo.System, v dynamo.State, dt float64, out dynamo.State) {
	r.resize(len(v))

	sys.Derive(v, r.k[0])
	for s := 1; s < len(r.k); s++ {
		h := rk4Nodes[s] * dt
		prev := r.k[s-1]
		for i, x := range v {
			r.stage[i] = x + h*prev[i]
		}
		sys.Derive(r.stage, r.k[s])
	}

	w := dt / 6
	k1, k2, k3, k4 := r.k[0], r.k[1], r.k[2], r.k[3]
	for i, x := range v {
		out[i] = x + w*(k1[i]+2*(k2[i]+k3[i])+k4[i])
	}
}
