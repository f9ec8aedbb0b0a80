package dynamo

import (
	"math/rand"

	"github.com/merement/Dice/internal/logging"
)

// parallelChunk is the smallest node range worth handing to its own goroutine.
const parallelChunk = 2048

// Derive writes the rate of every node into dv:
//
//	dv[n] = Σ_m F(v[n], v[m]) · w(n, m) + Ks · F(v[n], −v[n])
//
// Each node's sum is independent, so large graphs are split across
// goroutines without changing the result.
func (m *Model) Derive(v State, dv State) {
	ParallelFor(m.g.N(), parallelChunk, func(start, end int) {
		m.deriveRange(v, dv, start, end)
	})
}

func (m *Model) deriveRange(v, dv State, start, end int) {
	pair := m.pair
	for n := start; n < end; n++ {
		vn := v[n]
		sum := 0.0
		for _, nb := range m.g.Neighbors(n) {
			sum += pair(vn, v[nb.Node]) * nb.Weight
		}
		if m.ks != 0 {
			sum += m.ks * m.local(vn)
		}
		dv[n] = sum
	}
}

// Rate returns a fresh vector holding Derive(v).
func (m *Model) Rate(v State) State {
	dv := make(State, len(v))
	m.Derive(v, dv)
	return dv
}

// Evolve advances v in place through steps−1 integration steps of size
// Scale, adding noise drawn from rng when the model has a noise amplitude.
// rng may be nil for noiseless models. Evolve never aborts: when the
// divergence check is enabled it logs one warning and keeps going.
func (m *Model) Evolve(v State, steps int, rng *rand.Rand, observers ...Observer) State {
	if steps <= 1 {
		return v
	}
	integ := m.newIntegrator()
	next := make(State, len(v))
	track := len(observers) > 0 || m.divergence > 0
	limit := m.divergence * float64(m.g.N())
	warned := false

	for step := 1; step < steps; step++ {
		integ.Step(m, v, m.scale, next)

		if track {
			gradSq := 0.0
			for i := range v {
				d := (next[i] - v[i]) / m.scale
				gradSq += d * d
			}
			for _, obs := range observers {
				obs.OnStep(step, next, gradSq)
			}
			if m.divergence > 0 && gradSq > limit && !warned {
				warned = true
				m.log.Emit(logging.Warn, "large gradient during propagation",
					"step", step, "grad_sq", gradSq, "limit", limit)
			}
		}

		if m.noise > 0 && rng != nil {
			for i := range next {
				next[i] += m.noise * rng.NormFloat64()
			}
		}
		copy(v, next)
	}
	return v
}

// Propagate returns the state reached from v0 after steps−1 steps; v0 is
// left untouched.
func (m *Model) Propagate(v0 State, steps int, rng *rand.Rand, observers ...Observer) State {
	return m.Evolve(v0.Clone(), steps, rng, observers...)
}

// Trajectories is Propagate keeping every iterate, v0 included. It is meant
// for offline analysis; the solver itself only needs the final state.
func (m *Model) Trajectories(v0 State, steps int, rng *rand.Rand) []State {
	if steps < 1 {
		steps = 1
	}
	out := make([]State, 0, steps)
	v := v0.Clone()
	out = append(out, v.Clone())
	for step := 1; step < steps; step++ {
		m.Evolve(v, 2, rng)
		out = append(out, v.Clone())
	}
	return out
}
