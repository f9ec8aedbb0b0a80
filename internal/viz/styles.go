package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Panel       lipgloss.Style
	Title       lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Improved    lipgloss.Style
	Stalled     lipgloss.Style
	Failed      lipgloss.Style
	Graph       lipgloss.Style
	KeyHint     lipgloss.Style
	Subtle      lipgloss.Style
	SparkHigh   lipgloss.Style
	SparkMid    lipgloss.Style
	SparkLow    lipgloss.Style
	HelpOverlay lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value:    lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Improved: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Stalled:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Failed:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Graph:    lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		KeyHint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		Subtle:   lipgloss.NewStyle().Foreground(t.Muted),

		SparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		SparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		SparkLow:  lipgloss.NewStyle().Foreground(t.Error),

		HelpOverlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(t.Accent).
			Padding(0, 2),
	}
}

// AnimatedSpinner returns one frame of the braille spinner.
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	if frame < 0 {
		frame = -frame
	}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders the fraction done as a colored bar of the given width.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction > 0.8:
		return s.SparkLow.Render(bar)
	case fraction > 0.4:
		return s.SparkMid.Render(bar)
	}
	return s.SparkHigh.Render(bar)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline maps values onto block characters, sampling down to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := int(norm * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Separator draws a muted horizontal rule with a centre diamond.
func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.Subtle.Render(left + " ◆ " + right)
}
