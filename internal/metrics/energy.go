package metrics

import (
	"math"

	"github.com/merement/Dice/internal/dynamo"
)

const potentialSamples = 2048

// Potential is the energy whose negative gradient is the model's rate:
//
//	E(v) = Σ_(u,w) w·G(v_u − v_w) + Ks/2 · Σ_n G(2·v_n),   G(d) = −∫_0^d F
//
// G is tabulated once from the coupling, so any odd periodic coupling works.
type Potential struct {
	model *dynamo.Model
	table []float64
	step  float64
}

func NewPotential(m *dynamo.Model) *Potential {
	c := m.Coupling()
	f := func(d float64) float64 { return c.Pair(d, 0) }

	p := &Potential{
		model: m,
		table: make([]float64, potentialSamples+1),
		step:  2.0 / potentialSamples,
	}
	prev := f(0)
	for i := 1; i <= potentialSamples; i++ {
		// Midpoint of the cell keeps jump discontinuities of F out of the quadrature.
		mid := f((float64(i) - 0.5) * p.step)
		cur := f(float64(i) * p.step)
		p.table[i] = p.table[i-1] - p.step*(prev+4*mid+cur)/6
		prev = cur
	}
	return p
}

// G evaluates the tabulated pair potential. It is even and has period 4.
func (p *Potential) G(d float64) float64 {
	x := math.Abs(dynamo.Fold(d)) / p.step
	i := int(x)
	if i >= potentialSamples {
		return p.table[potentialSamples]
	}
	frac := x - float64(i)
	return p.table[i]*(1-frac) + p.table[i+1]*frac
}

func (p *Potential) Energy(v dynamo.State) float64 {
	g := p.model.Graph()
	e := 0.0
	for _, edge := range g.Edges() {
		e += edge.Weight * p.G(v[edge.U]-v[edge.V])
	}
	if ks := p.model.Anisotropy(); ks != 0 {
		for _, x := range v {
			e += ks / 2 * p.G(2*x)
		}
	}
	return e
}

// Energy tracks the potential along a run. Value is the largest increase
// between consecutive steps; gradient flow keeps it at zero up to
// discretisation error.
type Energy struct {
	name      string
	potential *Potential
	initial   float64
	current   float64
	maxRise   float64
	samples   int
}

func NewEnergy(p *Potential) *Energy {
	return &Energy{
		name:      "energy",
		potential: p,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(_ int, v dynamo.State, _ float64) {
	energy := e.potential.Energy(v)
	if e.samples == 0 {
		e.initial = energy
	} else {
		e.maxRise = math.Max(e.maxRise, energy-e.current)
	}
	e.current = energy
	e.samples++
}

func (e *Energy) Value() float64 {
	return e.maxRise
}

func (e *Energy) Initial() float64 { return e.initial }

func (e *Energy) Current() float64 { return e.current }

func (e *Energy) Reset() {
	e.initial = 0
	e.current = 0
	e.maxRise = 0
	e.samples = 0
}
