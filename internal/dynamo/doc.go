// Package dynamo integrates the oscillator relaxation used by the max-cut
// solver.
//
// Every node carries a phase-like real value living on a periodic domain of
// width 4, canonically folded into [-2, 2). The rate of node n is
//
//	dV[n] = Σ_m F(V[n] − V[m]) · w(n, m) + Ks · F(2·V[n])
//
// where F is a pluggable [Coupling] kernel and Ks the anisotropy constant.
// The package defines:
//
//   - [State]: the continuous vector V
//   - [Coupling] and the named kernels in [Kernels]
//   - [Model]: an immutable bundle of graph, kernel and integration constants
//   - [Integrator]: one explicit step of dV/dt; [Euler] is the default
//   - [Hybrid]: the spin + bounded offset decomposition of V
//
// # Example
//
//	m, _ := dynamo.NewModel(g, dynamo.WithCoupling(dynamo.Triangular))
//	v := m.Propagate(v0, 200, rng)
//
// # Thread Safety
//
// A Model is read-only after construction and may be shared by goroutines.
// Each call to [Model.Evolve] allocates its own integrator scratch space; the
// State passed in must not be shared with another goroutine during the call.
package dynamo
