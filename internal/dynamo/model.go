package dynamo

import (
	"fmt"
	"math"

	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
)

// Model bundles a graph with the coupling and integration constants used to
// evolve states on it. It is read-only after NewModel returns.
type Model struct {
	g          *graph.Graph
	coupling   Coupling
	pair       func(v1, v2 float64) float64
	local      func(v float64) float64
	scale      float64
	ks         float64
	noise      float64
	divergence float64
	verbosity  int
	log        logging.Emitter

	integratorName string
	newIntegrator  func() Integrator
}

// Option configures a Model under construction.
type Option func(*Model)

func WithCoupling(c Coupling) Option {
	return func(m *Model) { m.coupling = c }
}

// WithScale sets the integration step. The default is 1/maxDegree.
func WithScale(scale float64) Option {
	return func(m *Model) { m.scale = scale }
}

// WithAnisotropy sets Ks, the weight of the single-site term.
func WithAnisotropy(ks float64) Option {
	return func(m *Model) { m.ks = ks }
}

// WithNoise sets the amplitude of Gaussian noise added after every step.
func WithNoise(amplitude float64) Option {
	return func(m *Model) { m.noise = amplitude }
}

func WithVerbosity(v int) Option {
	return func(m *Model) { m.verbosity = v }
}

func WithLogger(e logging.Emitter) Option {
	return func(m *Model) { m.log = e }
}

// WithDivergenceFactor enables a warning when the squared rate norm exceeds
// factor · N during Evolve. Zero disables the check.
func WithDivergenceFactor(factor float64) Option {
	return func(m *Model) { m.divergence = factor }
}

// WithIntegrator replaces the default Euler step. The factory is called once
// per Evolve so every caller gets private scratch space.
func WithIntegrator(name string, factory func() Integrator) Option {
	return func(m *Model) {
		m.integratorName = name
		m.newIntegrator = factory
	}
}

// NewModel validates the options and resolves the coupling once so the hot
// loop calls it directly.
func NewModel(g *graph.Graph, opts ...Option) (*Model, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	m := &Model{
		g:              g,
		coupling:       Sine,
		scale:          DefaultScale(g),
		verbosity:      logging.DefaultVerbosity,
		log:            logging.Discard(),
		integratorName: "euler",
		newIntegrator:  func() Integrator { return NewEuler() },
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.log = m.log.WithVerbosity(m.verbosity)

	if k, ok := m.coupling.(*Kernel); ok {
		shape := k.shape
		m.pair = func(v1, v2 float64) float64 { return shape(Fold(v1 - v2)) }
		m.local = func(v float64) float64 { return shape(Fold(2 * v)) }
	} else {
		m.pair = m.coupling.Pair
		m.local = m.coupling.Local
	}
	return m, nil
}

// DefaultScale is 1/maxDegree, or 1 for an edgeless graph.
func DefaultScale(g *graph.Graph) float64 {
	if g.MaxDegree() == 0 {
		return 1
	}
	return 1 / float64(g.MaxDegree())
}

func (m *Model) validate() error {
	if m.coupling == nil {
		return fmt.Errorf("%w: nil coupling", ErrParameterBounds)
	}
	if m.scale <= 0 || math.IsNaN(m.scale) || math.IsInf(m.scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %g", ErrParameterBounds, m.scale)
	}
	if m.noise < 0 || math.IsNaN(m.noise) {
		return fmt.Errorf("%w: noise must be non-negative, got %g", ErrParameterBounds, m.noise)
	}
	if math.IsNaN(m.ks) || math.IsInf(m.ks, 0) {
		return fmt.Errorf("%w: anisotropy must be finite, got %g", ErrParameterBounds, m.ks)
	}
	if m.divergence < 0 {
		return fmt.Errorf("%w: divergence factor must be non-negative, got %g", ErrParameterBounds, m.divergence)
	}
	if m.newIntegrator == nil {
		return fmt.Errorf("%w: nil integrator factory", ErrParameterBounds)
	}
	return nil
}

// Tuned returns a copy with a different scale and verbosity. Graph and
// coupling are shared with the receiver.
func (m *Model) Tuned(scale float64, verbosity int) (*Model, error) {
	c := *m
	c.scale = scale
	c.verbosity = verbosity
	c.log = m.log.WithVerbosity(verbosity)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *Model) Graph() *graph.Graph       { return m.g }
func (m *Model) Coupling() Coupling        { return m.coupling }
func (m *Model) Scale() float64            { return m.scale }
func (m *Model) Anisotropy() float64       { return m.ks }
func (m *Model) Noise() float64            { return m.noise }
func (m *Model) Verbosity() int            { return m.verbosity }
func (m *Model) Logger() logging.Emitter   { return m.log }
func (m *Model) IntegratorName() string    { return m.integratorName }
func (m *Model) DivergenceFactor() float64 { return m.divergence }

// Dim implements System.
func (m *Model) Dim() int { return m.g.N() }
