package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/integrators"
	"github.com/merement/Dice/internal/metrics"
)

// GeneratorFunc builds a graph from its configuration section.
type GeneratorFunc func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error)

// Registry resolves the names used in configuration files.
type Registry struct {
	generators map[string]GeneratorFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		generators: make(map[string]GeneratorFunc),
	}

	r.generators["cycle"] = func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		return reweight(graph.Cycle(cfg.Nodes))(cfg, rng)
	}
	r.generators["complete"] = func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		return reweight(graph.Complete(cfg.Nodes))(cfg, rng)
	}
	r.generators["torus"] = func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		return reweight(graph.Torus(cfg.Rows, cfg.Cols))(cfg, rng)
	}
	r.generators["random"] = func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		return graph.Random(cfg.Nodes, cfg.Probability, rng, weightOptions(cfg)...)
	}
	r.generators["regular"] = func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		return graph.RandomRegular(cfg.Nodes, cfg.Degree, rng, weightOptions(cfg)...)
	}

	return r
}

func weightOptions(cfg config.GraphConfig) []graph.GenOption {
	if !cfg.Weighted() {
		return nil
	}
	return []graph.GenOption{graph.WithWeights(graph.UniformWeights(cfg.MinWeight, cfg.MaxWeight))}
}

// reweight draws random weights for a deterministic family when the
// configuration asks for them.
func reweight(g *graph.Graph, err error) GeneratorFunc {
	return func(cfg config.GraphConfig, rng *rand.Rand) (*graph.Graph, error) {
		if err != nil || !cfg.Weighted() {
			return g, err
		}
		draw := graph.UniformWeights(cfg.MinWeight, cfg.MaxWeight)
		b := graph.NewBuilder(g.N())
		for _, e := range g.Edges() {
			if err := b.AddEdge(e.U, e.V, draw(rng)); err != nil {
				return nil, err
			}
		}
		return b.Build(), nil
	}
}

func (r *Registry) GetGenerator(name string) (GeneratorFunc, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetCoupling(name string) (*dynamo.Kernel, error) {
	return dynamo.LookupKernel(name)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Option, error) {
	return integrators.Option(name)
}

func (r *Registry) ListGenerators() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListCouplings() []string { return dynamo.KernelNames() }

func (r *Registry) ListIntegrators() []string { return integrators.Names() }

// DefaultMetrics are the diagnostics recorded with every run.
func (r *Registry) DefaultMetrics(m *dynamo.Model) []metrics.Metric {
	factor := m.DivergenceFactor()
	if factor == 0 {
		factor = 100
	}
	return []metrics.Metric{
		metrics.NewActivity(),
		metrics.NewDivergence(factor, m.Dim()),
		metrics.NewEnergy(metrics.NewPotential(m)),
		metrics.NewOscillation(metrics.DefaultProbes),
	}
}
