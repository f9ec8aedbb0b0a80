package graph

import (
	"fmt"
	"math/bits"
)

// Configuration assigns a spin of +1 or -1 to every node.
type Configuration []int8

// NewConfiguration returns an all +1 configuration of length n.
func NewConfiguration(n int) Configuration {
	c := make(Configuration, n)
	for i := range c {
		c[i] = 1
	}
	return c
}

func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	copy(out, c)
	return out
}

// Negate flips every spin in place.
func (c Configuration) Negate() {
	for i := range c {
		c[i] = -c[i]
	}
}

// Equal reports whether both configurations assign identical spins.
func (c Configuration) Equal(other Configuration) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Valid reports whether every entry is +1 or -1.
func (c Configuration) Valid() bool {
	for _, s := range c {
		if s != 1 && s != -1 {
			return false
		}
	}
	return true
}

// Cut returns the total weight of edges whose endpoints carry opposite spins.
func Cut(g *Graph, c Configuration) (float64, error) {
	if len(c) != g.n {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(c), g.n)
	}
	return cut(g, c), nil
}

func cut(g *Graph, c Configuration) float64 {
	total := 0.0
	for _, e := range g.edges {
		if c[e.U] != c[e.V] {
			total += e.Weight
		}
	}
	return total
}

// FlipGain returns how much the cut grows if node n alone is flipped:
// the weighted agreement of n with its neighbourhood.
func FlipGain(g *Graph, c Configuration, n int) float64 {
	s := float64(c[n])
	gain := 0.0
	for _, nb := range g.adj[n] {
		gain += nb.Weight * s * float64(c[nb.Node])
	}
	return gain
}

// MaxExhaustive is the largest node count BruteForce and the integer
// encodings accept.
const MaxExhaustive = 20

// NumberToConf decodes k into a configuration of length n: bit i set means
// node i carries -1.
func NumberToConf(k uint64, n int) Configuration {
	c := make(Configuration, n)
	for i := 0; i < n; i++ {
		if k>>uint(i)&1 == 1 {
			c[i] = -1
		} else {
			c[i] = 1
		}
	}
	return c
}

// ConfToNumber is the inverse of NumberToConf.
func ConfToNumber(c Configuration) uint64 {
	var k uint64
	for i, s := range c {
		if s < 0 {
			k |= 1 << uint(i)
		}
	}
	return k
}

// BruteForce enumerates every configuration with the last node pinned to +1
// (cut is invariant under global negation) and returns the maximum cut.
// Consecutive candidates differ by one spin (Gray code), so each step costs
// one neighbourhood scan.
func BruteForce(g *Graph) (float64, Configuration, error) {
	if g.n > MaxExhaustive {
		return 0, nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, g.n, MaxExhaustive)
	}
	c := NewConfiguration(g.n)
	best := cut(g, c)
	bestConf := c.Clone()
	if g.n < 2 {
		return best, bestConf, nil
	}

	current := best
	free := g.n - 1
	for step := uint64(1); step < 1<<uint(free); step++ {
		node := bits.TrailingZeros64(step)
		current += FlipGain(g, c, node)
		c[node] = -c[node]
		if current > best {
			best = current
			copy(bestConf, c)
		}
	}
	return best, bestConf, nil
}
