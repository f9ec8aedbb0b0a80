// Package export renders stored runs as standalone SVG documents.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/optim"
)

var ErrNothingToDraw = errors.New("export: nothing to draw")

const (
	background = "#0a0a0a"
	bestColor  = "#00ff88"
	cutColor   = "#ffcc00"
	upColor    = "#00ffff"
	downColor  = "#ff00ff"
)

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// HistorySVG draws the polished cut and the best cut per round as two
// polylines on shared axes.
func HistorySVG(history []optim.Round, width, height int) (string, error) {
	if len(history) == 0 {
		return "", ErrNothingToDraw
	}

	lo, hi := history[0].Cut, history[0].Best
	for _, r := range history {
		lo = math.Min(lo, math.Min(r.Cut, r.Best))
		hi = math.Max(hi, math.Max(r.Cut, r.Best))
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	x := func(i int) float64 {
		if len(history) == 1 {
			return float64(width) / 2
		}
		return float64(i) / float64(len(history)-1) * float64(width)
	}
	y := func(v float64) float64 {
		return float64(height) - (v-lo)/span*float64(height)
	}

	var sb strings.Builder
	header(&sb, width, height)
	for _, series := range []struct {
		color string
		value func(optim.Round) float64
	}{
		{cutColor, func(r optim.Round) float64 { return r.Cut }},
		{bestColor, func(r optim.Round) float64 { return r.Best }},
	} {
		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, series.color)
		for i, r := range history {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", x(i), y(series.value(r)))
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// PhaseSVG places every relaxed phase on a circle, one turn per period,
// colored by the side of the cut the node ended on.
func PhaseSVG(relaxed dynamo.State, conf graph.Configuration, size int) (string, error) {
	if len(relaxed) == 0 {
		return "", ErrNothingToDraw
	}
	if len(conf) != len(relaxed) {
		return "", fmt.Errorf("%w: %d phases, %d spins", graph.ErrSizeMismatch, len(relaxed), len(conf))
	}

	c := float64(size) / 2
	r := c * 0.85
	dot := math.Max(1, float64(size)/200)

	var sb strings.Builder
	header(&sb, size, size)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#444466"/>
`, c, c, r)
	for i, x := range relaxed {
		theta := math.Pi * dynamo.Fold(x) / 2
		color := upColor
		if conf[i] < 0 {
			color = downColor
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, c+r*math.Cos(theta), c-r*math.Sin(theta), dot, color)
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}
