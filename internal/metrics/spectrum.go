package metrics

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/merement/Dice/internal/dynamo"
)

// DefaultProbes is how many leading nodes Oscillation follows.
const DefaultProbes = 8

// Oscillation is the share of step-to-step motion power in the upper half
// of the spectrum, summed over a few probe nodes. A relaxing flow keeps its
// increments smooth and scores near 0. An integrator overshooting a stiff
// coupling flips the increments every step and scores near 1.
type Oscillation struct {
	name   string
	probes int
	prev   []float64
	traces [][]float64
}

func NewOscillation(probes int) *Oscillation {
	if probes <= 0 {
		probes = DefaultProbes
	}
	return &Oscillation{
		name:   "oscillation",
		probes: probes,
	}
}

func (o *Oscillation) Name() string { return o.name }

func (o *Oscillation) OnStep(_ int, v dynamo.State, _ float64) {
	n := min(o.probes, len(v))
	if o.prev == nil {
		o.prev = make([]float64, n)
		o.traces = make([][]float64, n)
		copy(o.prev, v[:n])
		return
	}
	for i := range o.prev {
		o.traces[i] = append(o.traces[i], v[i]-o.prev[i])
		o.prev[i] = v[i]
	}
}

// PowerSpectrum returns |X_k|^2 for k = 0..len(x)/2.
func PowerSpectrum(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	bins := fft.FFTReal(x)
	ps := make([]float64, len(x)/2+1)
	for k := range ps {
		a := cmplx.Abs(bins[k])
		ps[k] = a * a
	}
	return ps
}

func (o *Oscillation) Value() float64 {
	var high, total, dc float64
	for _, tr := range o.traces {
		if len(tr) < 4 {
			continue
		}
		ps := PowerSpectrum(tr)
		half := len(ps) / 2
		dc += ps[0]
		for k := 1; k < len(ps); k++ {
			total += ps[k]
			if k > half {
				high += ps[k]
			}
		}
	}
	// rounding noise around a pure drift is not motion
	if total <= 1e-12*(total+dc) {
		return 0
	}
	return high / total
}

func (o *Oscillation) Reset() {
	o.prev = nil
	o.traces = nil
}
