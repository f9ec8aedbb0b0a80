package metrics

import "github.com/merement/Dice/internal/dynamo"

// Divergence counts steps whose squared rate norm exceeds factor · N.
// Value is the fraction of steps that stayed under the limit.
type Divergence struct {
	name       string
	limit      float64
	violations int
	samples    int
	firstStep  int
	maxGradSq  float64
}

func NewDivergence(factor float64, n int) *Divergence {
	return &Divergence{
		name:  "divergence",
		limit: factor * float64(n),
	}
}

func (d *Divergence) Name() string {
	return d.name
}

func (d *Divergence) OnStep(step int, _ dynamo.State, gradSq float64) {
	d.samples++
	if gradSq > d.maxGradSq {
		d.maxGradSq = gradSq
	}
	if gradSq > d.limit {
		if d.violations == 0 {
			d.firstStep = step
		}
		d.violations++
	}
}

func (d *Divergence) Value() float64 {
	if d.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(d.violations)/float64(d.samples)
}

func (d *Divergence) Violations() int { return d.violations }

// FirstStep is the step of the first violation, or 0 if there was none.
func (d *Divergence) FirstStep() int { return d.firstStep }

func (d *Divergence) MaxGradSq() float64 { return d.maxGradSq }

func (d *Divergence) Reset() {
	d.violations = 0
	d.samples = 0
	d.firstStep = 0
	d.maxGradSq = 0
}
