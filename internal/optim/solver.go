// Package optim searches for large cuts by repeatedly relaxing perturbed
// states, rounding them and polishing the result with local search.
package optim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/metrics"
	"github.com/merement/Dice/internal/rounding"
)

// Solver runs scans and searches over one model. It holds no per-run state
// and may be shared by concurrent searches.
type Solver struct {
	model   *dynamo.Model
	opts    Options
	log     logging.Emitter
	metrics *metrics.Solver
	onRound func(Round)
	pool    *dynamo.StatePool
}

type SolverOption func(*Solver)

// WithEmitter replaces the model's emitter for orchestration messages.
func WithEmitter(e logging.Emitter) SolverOption {
	return func(s *Solver) { s.log = e }
}

func WithMetrics(m *metrics.Solver) SolverOption {
	return func(s *Solver) { s.metrics = m }
}

// OnRound registers a callback invoked synchronously after every round.
func OnRound(fn func(Round)) SolverOption {
	return func(s *Solver) { s.onRound = fn }
}

func New(m *dynamo.Model, opts Options, solverOpts ...SolverOption) (*Solver, error) {
	if m == nil {
		return nil, dynamo.ErrNilGraph
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		model: m,
		opts:  opts,
		log:   m.Logger(),
		pool:  dynamo.NewStatePool(m.Dim()),
	}
	for _, o := range solverOpts {
		o(s)
	}
	return s, nil
}

func (s *Solver) Model() *dynamo.Model { return s.model }
func (s *Solver) Options() Options     { return s.opts }

// Candidate is one rounded trial.
type Candidate struct {
	Cut           float64
	Configuration graph.Configuration
	// State is the folded relaxed state the configuration was rounded from.
	State dynamo.State
	// Trial is the index of the winning trial, or -1 for the centre itself.
	Trial int
}

func (s *Solver) workers() int {
	if s.opts.Workers > 0 {
		return s.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// trialSeed mixes the run seed, round and trial index (splitmix64 finaliser)
// so every trial has its own reproducible stream whatever the worker count.
func trialSeed(seed int64, round, trial int) int64 {
	z := uint64(seed) + uint64(round)<<32 + uint64(trial)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// Scan rounds the centre, then runs trials perturbed copies of it through
// the dynamics and keeps the best rounding. The result is never worse than
// rounding the centre. Ties go to the lowest trial index.
//
// On cancellation Scan returns the best candidate among the trials that
// finished together with the context error.
func (s *Solver) Scan(ctx context.Context, center dynamo.State, trials, round int) (Candidate, error) {
	g := s.model.Graph()
	if len(center) != g.N() {
		return Candidate{}, fmt.Errorf("%w: centre has %d entries for %d nodes", graph.ErrSizeMismatch, len(center), g.N())
	}
	if trials < 0 {
		return Candidate{}, fmt.Errorf("%w: trials must be non-negative, got %d", ErrBadOptions, trials)
	}

	incumbent, err := rounding.BestRounding(g, center)
	if err != nil {
		return Candidate{}, err
	}
	best := Candidate{
		Cut:           incumbent.Cut,
		Configuration: incumbent.Configuration,
		State:         center.Clone().Fold(),
		Trial:         -1,
	}

	results := make([]*Candidate, trials)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers())
	for i := 0; i < trials; i++ {
		i := i
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			c, err := s.trial(center, round, i)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	waitErr := eg.Wait()

	for _, c := range results {
		if c != nil && c.Cut > best.Cut {
			best = *c
		}
	}
	if waitErr != nil {
		return best, waitErr
	}
	// errgroup's derived context hides a parent cancellation that raced the
	// last trial.
	return best, ctx.Err()
}

func (s *Solver) trial(center dynamo.State, round, index int) (*Candidate, error) {
	g := s.model.Graph()
	rng := rand.New(rand.NewSource(trialSeed(s.opts.Seed, round, index)))

	v := s.pool.Get()
	defer s.pool.Put(v)
	for j := range v {
		v[j] = center[j] + s.opts.Domain*(2*rng.Float64()-1)
	}
	if n := len(v); n > 0 {
		k := rng.Intn(n)
		kick := 2.0
		if rng.Intn(2) == 0 {
			kick = -2
		}
		v[k] += kick + s.opts.Kick*(2*rng.Float64()-1)
	}

	var observers []dynamo.Observer
	var div *metrics.Divergence
	if f := s.model.DivergenceFactor(); f > 0 {
		div = metrics.NewDivergence(f, g.N())
		observers = append(observers, div)
	}
	s.model.Evolve(v, s.opts.Steps, rng, observers...)
	v.Fold()
	if div != nil && div.Violations() > 0 {
		s.metrics.ObserveDivergent()
	}

	r, err := rounding.BestRounding(g, v)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", index, err)
	}
	s.log.Emit(logging.Trace, "trial", "round", round, "trial", index, "cut", r.Cut)
	return &Candidate{
		Cut:           r.Cut,
		Configuration: r.Configuration,
		State:         v.Clone(),
		Trial:         index,
	}, nil
}

// Center maps a configuration back onto the continuous domain: +1 to 0 and
// −1 to −2, the middles of the two half-period windows at threshold 0.
func Center(c graph.Configuration) dynamo.State {
	v := make(dynamo.State, len(c))
	for i, s := range c {
		if s < 0 {
			v[i] = -2
		}
	}
	return v
}
