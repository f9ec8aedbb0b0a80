package dynamo

import "math"

// fastSineSamples gives a grid spacing of about 1e-3 in d.
const fastSineSamples = 4096

var sineTable = NewShapeTable(fastSineSamples, func(d float64) float64 {
	return math.Sin(math.Pi * d / 2)
})

// ShapeTable samples a kernel shape over one period and interpolates
// linearly between neighbouring samples.
type ShapeTable struct {
	samples []float64
	perUnit float64
}

// NewShapeTable samples shape at n evenly spaced points of [-2, 2] (both
// ends included, so the last interval needs no wrap).
func NewShapeTable(n int, shape func(float64) float64) *ShapeTable {
	if n < 2 {
		n = 2
	}
	t := &ShapeTable{
		samples: make([]float64, n+1),
		perUnit: float64(n) / Period,
	}
	for i := range t.samples {
		t.samples[i] = shape(-Period/2 + float64(i)/t.perUnit)
	}
	return t
}

// At evaluates the tabulated shape at any d.
func (t *ShapeTable) At(d float64) float64 {
	pos := (Fold(d) + Period/2) * t.perUnit
	i := min(int(pos), len(t.samples)-2)
	frac := pos - float64(i)
	return t.samples[i] + frac*(t.samples[i+1]-t.samples[i])
}
