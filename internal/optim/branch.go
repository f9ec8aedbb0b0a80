package optim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/metrics"
	"github.com/merement/Dice/internal/refine"
	"github.com/merement/Dice/internal/rounding"
)

// SearchState is where a search stands. Improving is the only
// non-terminal state.
type SearchState int

const (
	Improving SearchState = iota
	Saturated
	DepthExceeded
	Canceled
)

func (s SearchState) String() string {
	switch s {
	case Improving:
		return "improving"
	case Saturated:
		return "saturated"
	case DepthExceeded:
		return "depth-exceeded"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("SearchState(%d)", int(s))
	}
}

// Round records one scan-and-polish round.
type Round struct {
	Index  int
	Trials int
	// ScanCut is the best rounding before local search.
	ScanCut float64
	// Cut is the polished cut of this round.
	Cut float64
	// Best is the best cut after this round.
	Best        float64
	Improved    bool
	Flips       int
	WinnerTrial int
	Elapsed     time.Duration
}

type Result struct {
	Cut           float64
	Configuration graph.Configuration
	// Center is the continuous state the last accepted configuration maps to.
	Center dynamo.State
	// Relaxed is the folded state of the best scan candidate.
	Relaxed dynamo.State
	Rounds  int
	Trials  int
	State   SearchState
	History []Round
	Elapsed time.Duration
}

// Branch deepens the search around the best configuration found so far.
// Every round scans around the current centre, polishes the winner with
// node- and edge-majority search and accepts it only if the cut strictly
// grows; then the centre moves to the new configuration and the trial
// budget grows by TrialGrowth. The search saturates on the first round
// without improvement and stops after MaxDepth rounds.
//
// start may be nil for the all-zero state. If ctx ends between rounds the
// best result so far is returned together with the context error.
func (s *Solver) Branch(ctx context.Context, start dynamo.State) (*Result, error) {
	g := s.model.Graph()
	began := time.Now()
	if start == nil {
		start = make(dynamo.State, g.N())
	}
	if len(start) != g.N() {
		return nil, fmt.Errorf("%w: start has %d entries for %d nodes", graph.ErrSizeMismatch, len(start), g.N())
	}

	first, err := rounding.BestRounding(g, start)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Cut:           first.Cut,
		Configuration: first.Configuration,
		Center:        start.Clone(),
		Relaxed:       start.Clone().Fold(),
		State:         Improving,
	}
	s.metrics.SetBestCut(res.Cut)
	s.log.Emit(logging.Debug, "search started", "nodes", g.N(), "edges", g.M(), "cut", res.Cut)

	finish := func(state SearchState) *Result {
		res.State = state
		res.Elapsed = time.Since(began)
		s.log.Emit(logging.Info, "search finished",
			"state", state, "cut", res.Cut, "rounds", res.Rounds, "trials", res.Trials,
			"elapsed", res.Elapsed)
		return res
	}

	center := res.Center
	trials := s.opts.Trials
	for {
		if err := ctx.Err(); err != nil {
			return finish(Canceled), err
		}
		if res.Rounds >= s.opts.MaxDepth {
			return finish(DepthExceeded), nil
		}

		round, cand, conf, err := s.round(ctx, center, trials, res.Rounds+1, res.Cut)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				s.metrics.ObserveRound(metrics.OutcomeCanceled, round.Elapsed, round.Trials)
				return finish(Canceled), err
			}
			return nil, err
		}
		res.Rounds++
		res.Trials += trials

		outcome := metrics.OutcomeStalled
		if round.Improved {
			outcome = metrics.OutcomeImproved
			res.Cut = round.Cut
			res.Configuration = conf
			res.Relaxed = cand.State
			center = Center(conf)
			res.Center = center
			trials += s.opts.TrialGrowth
		}
		round.Best = res.Cut
		res.History = append(res.History, round)

		s.metrics.ObserveRound(outcome, round.Elapsed, round.Trials)
		s.metrics.SetBestCut(res.Cut)
		s.log.Emit(logging.Info, "round",
			"round", round.Index, "trials", round.Trials, "scan_cut", round.ScanCut,
			"cut", round.Cut, "best", res.Cut, "improved", round.Improved)
		if s.onRound != nil {
			s.onRound(round)
		}

		if !round.Improved {
			return finish(Saturated), nil
		}
	}
}

func (s *Solver) round(ctx context.Context, center dynamo.State, trials, index int, best float64) (Round, Candidate, graph.Configuration, error) {
	g := s.model.Graph()
	started := time.Now()
	r := Round{Index: index, Trials: trials}

	cand, err := s.Scan(ctx, center, trials, index)
	r.Elapsed = time.Since(started)
	if err != nil {
		return r, cand, nil, err
	}
	r.ScanCut = cand.Cut
	r.WinnerTrial = cand.Trial

	conf := cand.Configuration.Clone()
	one, err := refine.LocalSearch(g, conf, s.opts.Refine)
	if err != nil && !errors.Is(err, refine.ErrPassLimit) {
		return r, cand, nil, err
	}
	if err != nil {
		s.log.Emit(logging.Warn, "node search hit its pass cap", "round", index, "passes", one.Passes)
	}
	two, err := refine.LocalTwoSearch(g, conf, s.opts.Refine)
	if err != nil && !errors.Is(err, refine.ErrPassLimit) {
		return r, cand, nil, err
	}
	if err != nil {
		s.log.Emit(logging.Warn, "edge search hit its pass cap", "round", index, "passes", two.Passes)
	}
	s.metrics.ObserveRefine("node", one.Flips)
	s.metrics.ObserveRefine("edge", two.Flips)

	cut, err := graph.Cut(g, conf)
	if err != nil {
		return r, cand, nil, err
	}
	r.Cut = cut
	r.Flips = one.Flips + two.Flips
	r.Improved = cut > best
	r.Elapsed = time.Since(started)
	return r, cand, conf, nil
}
