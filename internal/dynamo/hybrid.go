package dynamo

import (
	"fmt"

	"github.com/merement/Dice/internal/graph"
)

// Hybrid splits a state into spins and bounded offsets, V = σ + x + Shift,
// with every offset in [-1, 1). A spin flips exactly when its offset
// crosses the period boundary, so spin changes are tracked during
// integration instead of being re-derived by rounding.
type Hybrid struct {
	Spins  graph.Configuration
	Offset State
	Shift  float64
}

// NewHybrid decomposes v around the rounding centre shift.
func NewHybrid(v State, shift float64) *Hybrid {
	h := &Hybrid{
		Spins:  make(graph.Configuration, len(v)),
		Offset: make(State, len(v)),
		Shift:  shift,
	}
	for i, x := range v {
		u := Fold(x - shift)
		if u >= 0 {
			h.Spins[i] = 1
			h.Offset[i] = u - 1
		} else {
			h.Spins[i] = -1
			h.Offset[i] = u + 1
		}
	}
	return h
}

// State reassembles V = σ + x + Shift.
func (h *Hybrid) State() State {
	v := make(State, len(h.Offset))
	h.fill(v)
	return v
}

func (h *Hybrid) fill(v State) {
	for i := range v {
		v[i] = float64(h.Spins[i]) + h.Offset[i] + h.Shift
	}
}

// HybridRate returns the offset increment Δx = Scale · rate(σ + x + Shift).
func (m *Model) HybridRate(h *Hybrid) (State, error) {
	if len(h.Spins) != m.g.N() || len(h.Offset) != m.g.N() {
		return nil, fmt.Errorf("%w: hybrid has %d spins and %d offsets for %d nodes",
			graph.ErrSizeMismatch, len(h.Spins), len(h.Offset), m.g.N())
	}
	v := h.State()
	dx := make(State, len(v))
	m.Derive(v, dx)
	for i := range dx {
		dx[i] *= m.scale
	}
	return dx, nil
}

// UpdateHybrid adds dx to the offsets in place, wrapping any offset that
// leaves [-1, 1) by a half period and flipping its spin. It returns the
// number of spins flipped. dx must have one entry per node.
//
// Every |dx[i]| must be below 2; larger increments would skip a boundary.
// The caller guarantees this through the model scale. Values are not clamped.
func UpdateHybrid(h *Hybrid, dx State) (int, error) {
	if len(dx) != len(h.Offset) || len(h.Spins) != len(h.Offset) {
		return 0, fmt.Errorf("%w: increment has %d entries for %d offsets and %d spins",
			graph.ErrSizeMismatch, len(dx), len(h.Offset), len(h.Spins))
	}
	flips := 0
	for i, d := range dx {
		x := h.Offset[i] + d
		switch {
		case x >= 1:
			x -= 2
			h.Spins[i] = -h.Spins[i]
			flips++
		case x < -1:
			x += 2
			h.Spins[i] = -h.Spins[i]
			flips++
		}
		h.Offset[i] = x
	}
	return flips, nil
}

// PropagateHybrid runs steps−1 hybrid steps in place and returns the total
// number of spin flips.
func (m *Model) PropagateHybrid(h *Hybrid, steps int) (int, error) {
	if len(h.Spins) != m.g.N() || len(h.Offset) != m.g.N() {
		return 0, fmt.Errorf("%w: hybrid has %d spins and %d offsets for %d nodes",
			graph.ErrSizeMismatch, len(h.Spins), len(h.Offset), m.g.N())
	}
	v := make(State, m.g.N())
	dx := make(State, m.g.N())
	flips := 0
	for step := 1; step < steps; step++ {
		h.fill(v)
		m.Derive(v, dx)
		for i := range dx {
			dx[i] *= m.scale
		}
		n, err := UpdateHybrid(h, dx)
		if err != nil {
			return flips, err
		}
		flips += n
	}
	return flips, nil
}
