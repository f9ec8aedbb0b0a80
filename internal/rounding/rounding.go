// Package rounding turns a continuous state into a spin configuration.
//
// A threshold t selects the half-period window [t−1, t+1) on the circle of
// circumference 4: nodes whose folded value lies inside get +1, the rest −1.
// Thresholds t and t+2 give negated configurations with the same cut, so
// only t ∈ [−2, 0] has to be searched.
package rounding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
)

var ErrInvalidState = errors.New("rounding: state contains NaN or Inf")

// Result is the best rounding found by a sweep.
type Result struct {
	Cut           float64
	Configuration graph.Configuration
	// Threshold reproduces Configuration through ExtractConfiguration.
	Threshold float64
}

// ExtractConfiguration rounds v at threshold t. The threshold is folded
// onto [-2, 2) first; a non-finite t yields all −1.
func ExtractConfiguration(v dynamo.State, t float64) graph.Configuration {
	t = dynamo.Fold(t)
	switch {
	case t > 1:
		c := window(v, t-2)
		c.Negate()
		return c
	case t < -1:
		c := window(v, t+2)
		c.Negate()
		return c
	}
	return window(v, t)
}

// window assigns +1 to the nodes whose folded value lies in [t−1, t+1).
func window(v dynamo.State, t float64) graph.Configuration {
	c := make(graph.Configuration, len(v))
	lo, hi := t-1, t+1
	for i, x := range v {
		u := dynamo.Fold(x)
		if u >= lo && u < hi {
			c[i] = 1
		} else {
			c[i] = -1
		}
	}
	return c
}

// event is a threshold past which node flips sign.
type event struct {
	at   float64
	node int
}

// BestRounding sweeps every threshold in [−2, 0] and returns the one with
// the largest cut. The window edges pass the sorted folded values in order,
// so one pointer walks the nodes leaving at the lower edge and another the
// nodes entering at the upper edge; whichever fires first is applied and the
// cut is updated from the flipped node's neighbourhood.
//
// The first threshold reaching the maximum wins.
func BestRounding(g *graph.Graph, v dynamo.State) (Result, error) {
	n := g.N()
	if len(v) != n {
		return Result{}, fmt.Errorf("%w: state has %d entries for %d nodes", graph.ErrSizeMismatch, len(v), n)
	}
	if !v.IsValid() {
		return Result{}, ErrInvalidState
	}

	u := make([]float64, n)
	order := make([]int, n)
	for i, x := range v {
		u[i] = dynamo.Fold(x)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return u[order[a]] < u[order[b]] })

	// At t = −2 the window is [1, 2) ∪ [−2, −1). For t > −2 a node at u
	// leaves once t passes u−3 (u ≥ 1) or u+1 (u < −1), and a node with
	// u ∈ [−1, 1) enters once t passes u−1. Both lists come out ascending.
	c := make(graph.Configuration, n)
	var high, low, enter []event
	for _, i := range order {
		switch x := u[i]; {
		case x >= 1:
			c[i] = 1
			high = append(high, event{at: x - 3, node: i})
		case x < -1:
			c[i] = 1
			low = append(low, event{at: x + 1, node: i})
		default:
			c[i] = -1
			enter = append(enter, event{at: x - 1, node: i})
		}
	}
	leave := append(high, low...)
	start := c.Clone()

	current, _ := graph.Cut(g, c)
	best := current
	bestFlips := 0
	flipped := make([]int, 0, n)

	// Configuration after the group ending at flips is valid on (at, next].
	firstAt := 0.0
	if len(leave) > 0 || len(enter) > 0 {
		firstAt = nextAt(leave, enter, 0, 0)
	}
	bestAt := -2.0
	if firstAt > -2 {
		bestAt = midpoint(-2, firstAt)
	}

	li, ei := 0, 0
	for li < len(leave) || ei < len(enter) {
		at := nextAt(leave, enter, li, ei)
		for li < len(leave) && leave[li].at == at {
			current += graph.FlipGain(g, c, leave[li].node)
			c[leave[li].node] = -1
			flipped = append(flipped, leave[li].node)
			li++
		}
		for ei < len(enter) && enter[ei].at == at {
			current += graph.FlipGain(g, c, enter[ei].node)
			c[enter[ei].node] = 1
			flipped = append(flipped, enter[ei].node)
			ei++
		}
		if current > best {
			best = current
			bestFlips = len(flipped)
			next := 0.0
			if li < len(leave) || ei < len(enter) {
				next = nextAt(leave, enter, li, ei)
			}
			bestAt = midpoint(at, next)
		}
	}

	for _, i := range flipped[:bestFlips] {
		start[i] = -start[i]
	}
	// Recompute to shed the rounding drift of the incremental sum.
	best, _ = graph.Cut(g, start)
	return Result{Cut: best, Configuration: start, Threshold: bestAt}, nil
}

// midpoint returns a threshold strictly inside (at, next], falling back to
// next when the two are adjacent floats.
func midpoint(at, next float64) float64 {
	m := at + (next-at)/2
	if m <= at {
		return next
	}
	return m
}

func nextAt(leave, enter []event, li, ei int) float64 {
	switch {
	case li >= len(leave):
		return enter[ei].at
	case ei >= len(enter):
		return leave[li].at
	case leave[li].at < enter[ei].at:
		return leave[li].at
	default:
		return enter[ei].at
	}
}

// BestCut returns the cut of the best rounding of v.
func BestCut(g *graph.Graph, v dynamo.State) (float64, error) {
	r, err := BestRounding(g, v)
	return r.Cut, err
}

// BestConfiguration returns the configuration of the best rounding of v.
func BestConfiguration(g *graph.Graph, v dynamo.State) (graph.Configuration, error) {
	r, err := BestRounding(g, v)
	if err != nil {
		return nil, err
	}
	return r.Configuration, nil
}
