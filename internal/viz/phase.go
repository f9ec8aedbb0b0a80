package viz

import (
	"math"

	"github.com/merement/Dice/internal/dynamo"
)

// PhasePortrait places each folded phase on a circle, one full turn per
// period, and draws the rounding threshold as a diameter. Nodes sit on a
// few concentric rings so coincident phases stay distinguishable.
func PhasePortrait(v dynamo.State, threshold float64, w, h int) string {
	c := NewCanvas(w, h)
	cx, cy := w, h*2
	r := min(cx, cy) - 1
	if r < 2 {
		return c.String()
	}
	c.DrawCircle(cx, cy, r)

	tx, ty := phasePoint(threshold, float64(r))
	c.DrawLine(cx-tx, cy-ty, cx+tx, cy+ty)

	const rings = 4
	for i, x := range v {
		ring := 0.45 + 0.4*float64(i%rings)/float64(rings-1)
		px, py := phasePoint(dynamo.Fold(x), ring*float64(r))
		c.Set(cx+px, cy+py)
		c.Set(cx+px+1, cy+py)
	}
	return c.String()
}

// phasePoint maps x in [-2, 2) to the circle of the given radius, screen y down.
func phasePoint(x, radius float64) (int, int) {
	theta := math.Pi * x / 2
	return int(math.Round(radius * math.Cos(theta))), -int(math.Round(radius * math.Sin(theta)))
}
