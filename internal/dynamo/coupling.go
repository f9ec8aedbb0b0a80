package dynamo

import (
	"fmt"
	"math"
	"sort"
)

// Coupling is the pairwise interaction between two node values.
//
// Pair(v1, v2) is F(v1 − v2) for a period-4 kernel F with F(0) = 0 and
// F(−d) = −F(d). Local(v) is the single-site anisotropy form, Pair(v, −v).
type Coupling interface {
	Pair(v1, v2 float64) float64
	Local(v float64) float64
}

// Kernel is a named coupling defined by its shape on the folded difference.
//
// The difference is always folded into [-2, 2) before evaluation, so the
// period boundary is represented by −2 and F(2) = F(−2). For the
// discontinuous Square kernel this makes F(±2) = −1; the continuous kernels
// vanish there.
type Kernel struct {
	name  string
	shape func(d float64) float64
}

func (k *Kernel) Name() string { return k.name }

// Eval returns F(d).
func (k *Kernel) Eval(d float64) float64 { return k.shape(Fold(d)) }

func (k *Kernel) Pair(v1, v2 float64) float64 { return k.shape(Fold(v1 - v2)) }

func (k *Kernel) Local(v float64) float64 { return k.shape(Fold(2 * v)) }

func (k *Kernel) String() string { return k.name }

const (
	skewPeak     = 0.5
	squarishGain = 4.0
)

var (
	// Sine is sin(π·d/2).
	Sine = &Kernel{name: "sine", shape: func(d float64) float64 {
		return math.Sin(math.Pi * d / 2)
	}}

	// FastSine is Sine evaluated through the interpolated lookup table.
	FastSine = &Kernel{name: "fastsine", shape: func(d float64) float64 {
		return sineTable.At(d)
	}}

	// Triangular is the piecewise-linear wave peaking at d = ±1.
	Triangular = &Kernel{name: "triangular", shape: func(d float64) float64 {
		switch {
		case d > 1:
			return 2 - d
		case d < -1:
			return -2 - d
		default:
			return d
		}
	}}

	// Square is sign(d) on the folded difference.
	Square = &Kernel{name: "square", shape: func(d float64) float64 {
		switch {
		case d > 0:
			return 1
		case d < 0:
			return -1
		default:
			return 0
		}
	}}

	// Skewed rises steeply to its peak at |d| = 0.5 and decays linearly to the boundary.
	Skewed = &Kernel{name: "skewed", shape: func(d float64) float64 {
		a := math.Abs(d)
		var f float64
		if a <= skewPeak {
			f = a / skewPeak
		} else {
			f = (2 - a) / (2 - skewPeak)
		}
		if d < 0 {
			return -f
		}
		return f
	}}

	// Squarish is a saturated sine, tanh(g·sin(π·d/2)) / tanh(g).
	Squarish = &Kernel{name: "squarish", shape: func(d float64) float64 {
		return math.Tanh(squarishGain*math.Sin(math.Pi*d/2)) / math.Tanh(squarishGain)
	}}
)

// Kernels lists the built-in couplings by name.
var Kernels = map[string]*Kernel{
	Sine.name:       Sine,
	FastSine.name:   FastSine,
	Triangular.name: Triangular,
	Square.name:     Square,
	Skewed.name:     Skewed,
	Squarish.name:   Squarish,
}

// LookupKernel resolves a kernel name.
func LookupKernel(name string) (*Kernel, error) {
	k, ok := Kernels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownCoupling, name, KernelNames())
	}
	return k, nil
}

// KernelNames returns the built-in kernel names in sorted order.
func KernelNames() []string {
	names := make([]string, 0, len(Kernels))
	for name := range Kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
