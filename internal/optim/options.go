package optim

import (
	"fmt"
	"math"

	"github.com/merement/Dice/internal/refine"
)

// Options control one search. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Steps is the propagate length of every trial.
	Steps int
	// Trials is the trial budget of the first round.
	Trials int
	// TrialGrowth is added to the budget after every improving round.
	TrialGrowth int
	// Domain is the half-width of the uniform perturbation around the centre.
	Domain float64
	// Kick is the jitter added to the half-period kick of one random node.
	Kick float64
	// MaxDepth caps the number of rounds.
	MaxDepth int
	// Workers bounds concurrent trials. Zero uses GOMAXPROCS.
	Workers int
	Seed    int64
	Refine  refine.Options
}

func DefaultOptions() Options {
	return Options{
		Steps:       200,
		Trials:      8,
		TrialGrowth: 2,
		Domain:      0.5,
		Kick:        0.5,
		MaxDepth:    50,
		Seed:        1,
	}
}

func (o Options) Validate() error {
	switch {
	case o.Steps < 2:
		return fmt.Errorf("%w: steps must be at least 2, got %d", ErrBadOptions, o.Steps)
	case o.Trials < 1:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrBadOptions, o.Trials)
	case o.TrialGrowth < 0:
		return fmt.Errorf("%w: trial growth must be non-negative, got %d", ErrBadOptions, o.TrialGrowth)
	case o.Domain < 0 || math.IsNaN(o.Domain) || math.IsInf(o.Domain, 0):
		return fmt.Errorf("%w: domain must be finite and non-negative, got %g", ErrBadOptions, o.Domain)
	case o.Kick < 0 || math.IsNaN(o.Kick) || math.IsInf(o.Kick, 0):
		return fmt.Errorf("%w: kick must be finite and non-negative, got %g", ErrBadOptions, o.Kick)
	case o.MaxDepth < 1:
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrBadOptions, o.MaxDepth)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrBadOptions, o.Workers)
	case o.Refine.MaxPasses < 0:
		return fmt.Errorf("%w: refine pass cap must be non-negative, got %d", ErrBadOptions, o.Refine.MaxPasses)
	}
	return nil
}
