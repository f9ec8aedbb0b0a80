// Package viz renders search progress in the terminal.
//
// The live view is a Bubble Tea program fed by a [Feed]:
//
//   - every completed branch round arrives as a [RoundMsg]
//   - the final result arrives as a [DoneMsg]
//
// Static helpers render the same pieces without a terminal program:
// [PlotHistory] draws the best cut per round with asciigraph and
// [PhasePortrait] places the relaxed oscillator phases on a braille circle.
//
// # Key Bindings
//
//	Q, Ctrl+C - Stop the search and quit
//	T         - Cycle color themes
//	P         - Toggle the phase portrait
//	?         - Show help overlay
package viz
