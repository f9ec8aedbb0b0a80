package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/merement/Dice/internal/optim"
)

// PlotHistory charts the best cut and the per-round polished cut.
// It returns "" for an empty history.
func PlotHistory(history []optim.Round, width, height int) string {
	if len(history) == 0 {
		return ""
	}
	best := make([]float64, 0, len(history)+1)
	cuts := make([]float64, 0, len(history)+1)
	for _, r := range history {
		best = append(best, r.Best)
		cuts = append(cuts, r.Cut)
	}
	if len(history) == 1 {
		best = append(best, best[0])
		cuts = append(cuts, cuts[0])
	}

	last := history[len(history)-1]
	return asciigraph.PlotMany([][]float64{cuts, best},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("cut per round (best %.6g after %d rounds)", last.Best, len(history))),
	)
}

// TrialCounts returns the number of trials scanned in each round.
func TrialCounts(history []optim.Round) []float64 {
	out := make([]float64, len(history))
	for i, r := range history {
		out[i] = float64(r.Trials)
	}
	return out
}
