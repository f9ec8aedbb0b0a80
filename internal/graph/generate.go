package graph

import (
	"fmt"
	"math/rand"
)

const defaultMaxAttempts = 200

// WeightFunc draws the weight of a freshly generated edge.
type WeightFunc func(rng *rand.Rand) float64

// UniformWeights draws weights uniformly from [lo, hi).
func UniformWeights(lo, hi float64) WeightFunc {
	return func(rng *rand.Rand) float64 { return lo + (hi-lo)*rng.Float64() }
}

type genConfig struct {
	weight      WeightFunc
	maxAttempts int
}

// GenOption tunes a random generator.
type GenOption func(*genConfig)

// WithWeights makes generated edges weighted.
func WithWeights(fn WeightFunc) GenOption {
	return func(c *genConfig) { c.weight = fn }
}

// WithMaxAttempts bounds how many samples a generator draws before giving up.
func WithMaxAttempts(n int) GenOption {
	return func(c *genConfig) { c.maxAttempts = n }
}

func newGenConfig(opts []GenOption) genConfig {
	cfg := genConfig{maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c genConfig) draw(rng *rand.Rand) float64 {
	if c.weight == nil || rng == nil {
		return 1
	}
	return c.weight(rng)
}

// Bernoulli returns true with probability p.
func Bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// Cycle returns the n-cycle 0-1-...-(n-1)-0.
func Cycle(n int) (*Graph, error) {
	if n < 3 {
		return nil, fmt.Errorf("cycle: need n >= 3, got %d: %w", n, ErrBadParameter)
	}
	b := NewBuilder(n)
	for i := 0; i < n; i++ {
		if err := b.AddEdge(i, (i+1)%n, 1); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Complete returns K_n.
func Complete(n int) (*Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("complete: need n >= 1, got %d: %w", n, ErrBadParameter)
	}
	b := NewBuilder(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := b.AddEdge(i, j, 1); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// Torus returns the rows x cols grid with periodic boundaries. Both sides
// must be at least 3 so that wrap-around edges are distinct.
func Torus(rows, cols int) (*Graph, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("torus: need sides >= 3, got %dx%d: %w", rows, cols, ErrBadParameter)
	}
	b := NewBuilder(rows * cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := r*cols + c
			if err := b.AddEdge(u, r*cols+(c+1)%cols, 1); err != nil {
				return nil, err
			}
			if err := b.AddEdge(u, ((r+1)%rows)*cols+c, 1); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// Random samples G(n, p), drawing again until the sample is connected.
func Random(n int, p float64, rng *rand.Rand, opts ...GenOption) (*Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("random: need n >= 1, got %d: %w", n, ErrBadParameter)
	}
	if p <= 0 || p > 1 {
		return nil, fmt.Errorf("random: edge probability %g outside (0, 1]: %w", p, ErrBadParameter)
	}
	cfg := newGenConfig(opts)
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		b := NewBuilder(n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if Bernoulli(rng, p) {
					if err := b.AddEdge(i, j, cfg.draw(rng)); err != nil {
						return nil, err
					}
				}
			}
		}
		if g := b.Build(); g.Connected() {
			return g, nil
		}
	}
	return nil, fmt.Errorf("random(n=%d, p=%g): %w after %d attempts", n, p, ErrDisconnected, cfg.maxAttempts)
}

// RandomRegular samples a connected simple d-regular graph with the pairing
// model, reshuffling stubs until the pairing has no loops or parallel edges.
func RandomRegular(n, d int, rng *rand.Rand, opts ...GenOption) (*Graph, error) {
	if n < 1 || d < 1 || d >= n {
		return nil, fmt.Errorf("regular: need 1 <= d < n, got n=%d d=%d: %w", n, d, ErrBadParameter)
	}
	if n*d%2 != 0 {
		return nil, fmt.Errorf("regular: n*d must be even, got n=%d d=%d: %w", n, d, ErrBadParameter)
	}
	cfg := newGenConfig(opts)

	stubs := make([]int, 0, n*d)
	for i := 0; i < n; i++ {
		for k := 0; k < d; k++ {
			stubs = append(stubs, i)
		}
	}

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		rng.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })

		b := NewBuilder(n)
		ok := true
		for i := 0; i < len(stubs); i += 2 {
			u, v := stubs[i], stubs[i+1]
			if u == v || b.HasEdge(u, v) {
				ok = false
				break
			}
			if err := b.AddEdge(u, v, cfg.draw(rng)); err != nil {
				return nil, err
			}
		}
		if !ok {
			continue
		}
		if g := b.Build(); g.Connected() {
			return g, nil
		}
	}
	return nil, fmt.Errorf("regular(n=%d, d=%d): %w after %d attempts", n, d, ErrDisconnected, cfg.maxAttempts)
}
