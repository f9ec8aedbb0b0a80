// Package experiment turns a run configuration into a graph, a model and a
// solver, and runs the search.
package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/optim"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      logging.Emitter

	graph  *graph.Graph
	model  *dynamo.Model
	solver *optim.Solver
}

func New(cfg *config.Config, log logging.Emitter) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      log.WithVerbosity(cfg.Verbosity),
	}
}

// Setup validates the configuration and builds the graph, model and solver.
// A non-nil g replaces the configured graph.
func (e *Experiment) Setup(g *graph.Graph, solverOpts ...optim.SolverOption) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	if g == nil {
		var err error
		if g, err = e.BuildGraph(); err != nil {
			return err
		}
	}
	e.graph = g

	m, err := e.BuildModel(g)
	if err != nil {
		return err
	}
	e.model = m

	opts := append([]optim.SolverOption{optim.WithEmitter(e.log)}, solverOpts...)
	e.solver, err = optim.New(m, e.cfg.Solver.Options(e.cfg.Seed), opts...)
	return err
}

// BuildGraph loads the configured file or runs the configured generator
// with an RNG seeded from the run seed.
func (e *Experiment) BuildGraph() (*graph.Graph, error) {
	gc := e.cfg.Graph
	if gc.Path != "" {
		return graph.Load(gc.Path)
	}
	gen, err := e.registry.GetGenerator(gc.Generator)
	if err != nil {
		return nil, err
	}
	g, err := gen(gc, rand.New(rand.NewSource(e.cfg.Seed)))
	if err != nil {
		return nil, fmt.Errorf("generate %s graph: %w", gc.Generator, err)
	}
	return g, nil
}

func (e *Experiment) BuildModel(g *graph.Graph) (*dynamo.Model, error) {
	mc := e.cfg.Model
	k, err := e.registry.GetCoupling(mc.Coupling)
	if err != nil {
		return nil, err
	}
	integ, err := e.registry.GetIntegrator(mc.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []dynamo.Option{
		dynamo.WithCoupling(k),
		integ,
		dynamo.WithAnisotropy(mc.Anisotropy),
		dynamo.WithNoise(mc.Noise),
		dynamo.WithDivergenceFactor(mc.DivergenceFactor),
		dynamo.WithLogger(e.log),
		dynamo.WithVerbosity(e.cfg.Verbosity),
	}
	if mc.Scale > 0 {
		opts = append(opts, dynamo.WithScale(mc.Scale))
	}
	return dynamo.NewModel(g, opts...)
}

// Run searches from the all-zero state, honouring the configured timeout.
func (e *Experiment) Run(ctx context.Context) (*optim.Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if t := e.cfg.Solver.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return e.solver.Branch(ctx, nil)
}

// Diagnose replays one noiseless propagation from the result's centre with
// the default metrics attached and returns their values by name.
func (e *Experiment) Diagnose(res *optim.Result) map[string]float64 {
	ms := e.registry.DefaultMetrics(e.model)
	observers := make([]dynamo.Observer, len(ms))
	for i, m := range ms {
		observers[i] = m
	}
	v0 := res.Center.Clone()
	rng := rand.New(rand.NewSource(e.cfg.Seed))
	for i := range v0 {
		v0[i] += e.cfg.Solver.Domain * (2*rng.Float64() - 1)
	}
	e.model.Propagate(v0, e.cfg.Solver.Steps, nil, observers...)

	out := make(map[string]float64, len(ms)+1)
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	// rms phase offset between the relaxed state and its rounded centre
	if n := len(res.Relaxed); n > 0 && n == len(res.Center) {
		out["drift"] = res.Center.Distance(res.Relaxed) / math.Sqrt(float64(n))
	}
	return out
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Graph() *graph.Graph    { return e.graph }
func (e *Experiment) Model() *dynamo.Model   { return e.model }
func (e *Experiment) Solver() *optim.Solver  { return e.solver }
func (e *Experiment) Registry() *Registry    { return e.registry }
