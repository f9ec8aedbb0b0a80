package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/integrators"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/optim"
	"github.com/merement/Dice/internal/refine"
)

const (
	DefaultCoupling    = "sine"
	DefaultIntegrator  = "euler"
	DefaultGenerator   = "regular"
	DefaultNodes       = 100
	DefaultDegree      = 3
	DefaultProbability = 0.1
	DefaultSteps       = 200
	DefaultTrials      = 8
	DefaultTrialGrowth = 2
	DefaultDomain      = 0.5
	DefaultKick        = 0.5
	DefaultMaxDepth    = 50
	DefaultSeed        = 1
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid configuration")
)

// Generators names the graph families GraphConfig.Generator accepts.
var Generators = []string{"complete", "cycle", "random", "regular", "torus"}

type Config struct {
	Graph     GraphConfig  `yaml:"graph"`
	Model     ModelConfig  `yaml:"model"`
	Solver    SolverConfig `yaml:"solver"`
	Seed      int64        `yaml:"seed"`
	Verbosity int          `yaml:"verbosity"`
}

// GraphConfig either points at a graph file or describes a generated one.
// Path wins when both are set.
type GraphConfig struct {
	Path        string  `yaml:"path,omitempty"`
	Generator   string  `yaml:"generator,omitempty"`
	Nodes       int     `yaml:"nodes,omitempty"`
	Degree      int     `yaml:"degree,omitempty"`
	Probability float64 `yaml:"probability,omitempty"`
	Rows        int     `yaml:"rows,omitempty"`
	Cols        int     `yaml:"cols,omitempty"`
	MinWeight   float64 `yaml:"min_weight,omitempty"`
	MaxWeight   float64 `yaml:"max_weight,omitempty"`
}

// Weighted reports whether generated edges get random weights.
func (g GraphConfig) Weighted() bool {
	return g.MaxWeight > 0
}

type ModelConfig struct {
	Coupling   string `yaml:"coupling"`
	Integrator string `yaml:"integrator"`
	// Scale of zero selects 1/maxDegree.
	Scale            float64 `yaml:"scale,omitempty"`
	Anisotropy       float64 `yaml:"anisotropy"`
	Noise            float64 `yaml:"noise"`
	DivergenceFactor float64 `yaml:"divergence_factor"`
}

type SolverConfig struct {
	Steps       int           `yaml:"steps"`
	Trials      int           `yaml:"trials"`
	TrialGrowth int           `yaml:"trial_growth"`
	Domain      float64       `yaml:"domain"`
	Kick        float64       `yaml:"kick"`
	MaxDepth    int           `yaml:"max_depth"`
	Workers     int           `yaml:"workers"`
	MaxPasses   int           `yaml:"max_passes"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Generator:   DefaultGenerator,
			Nodes:       DefaultNodes,
			Degree:      DefaultDegree,
			Probability: DefaultProbability,
		},
		Model: ModelConfig{
			Coupling:   DefaultCoupling,
			Integrator: DefaultIntegrator,
		},
		Solver: SolverConfig{
			Steps:       DefaultSteps,
			Trials:      DefaultTrials,
			TrialGrowth: DefaultTrialGrowth,
			Domain:      DefaultDomain,
			Kick:        DefaultKick,
			MaxDepth:    DefaultMaxDepth,
		},
		Seed:      DefaultSeed,
		Verbosity: logging.DefaultVerbosity,
	}
}

// Load reads a YAML file over the defaults, so partial files are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Options converts the solver section into search options.
func (s SolverConfig) Options(seed int64) optim.Options {
	return optim.Options{
		Steps:       s.Steps,
		Trials:      s.Trials,
		TrialGrowth: s.TrialGrowth,
		Domain:      s.Domain,
		Kick:        s.Kick,
		MaxDepth:    s.MaxDepth,
		Workers:     s.Workers,
		Seed:        seed,
		Refine:      refine.Options{MaxPasses: s.MaxPasses},
	}
}

func (c *Config) Validate() error {
	if err := c.validateGraph(); err != nil {
		return err
	}
	if _, err := dynamo.LookupKernel(c.Model.Coupling); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := integrators.Lookup(c.Model.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Model.Scale < 0 {
		return fmt.Errorf("%w: scale must be non-negative, got %g", ErrInvalid, c.Model.Scale)
	}
	if c.Model.Noise < 0 {
		return fmt.Errorf("%w: noise must be non-negative, got %g", ErrInvalid, c.Model.Noise)
	}
	if c.Model.DivergenceFactor < 0 {
		return fmt.Errorf("%w: divergence factor must be non-negative, got %g", ErrInvalid, c.Model.DivergenceFactor)
	}
	if c.Solver.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %s", ErrInvalid, c.Solver.Timeout)
	}
	if err := c.Solver.Options(c.Seed).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) validateGraph() error {
	g := c.Graph
	if g.Path != "" {
		return nil
	}
	if g.MinWeight < 0 || g.MaxWeight < g.MinWeight {
		return fmt.Errorf("%w: weight range [%g, %g]", ErrInvalid, g.MinWeight, g.MaxWeight)
	}
	switch g.Generator {
	case "cycle":
		if g.Nodes < 3 {
			return fmt.Errorf("%w: cycle needs at least 3 nodes, got %d", ErrInvalid, g.Nodes)
		}
	case "complete":
		if g.Nodes < 1 {
			return fmt.Errorf("%w: complete needs at least 1 node, got %d", ErrInvalid, g.Nodes)
		}
	case "torus":
		if g.Rows < 3 || g.Cols < 3 {
			return fmt.Errorf("%w: torus needs rows and cols >= 3, got %dx%d", ErrInvalid, g.Rows, g.Cols)
		}
	case "random":
		if g.Nodes < 1 || g.Probability <= 0 || g.Probability > 1 {
			return fmt.Errorf("%w: random needs nodes >= 1 and 0 < p <= 1, got n=%d p=%g", ErrInvalid, g.Nodes, g.Probability)
		}
	case "regular":
		if g.Degree < 1 || g.Degree >= g.Nodes || g.Nodes*g.Degree%2 != 0 {
			return fmt.Errorf("%w: regular needs 1 <= d < n with n*d even, got n=%d d=%d", ErrInvalid, g.Nodes, g.Degree)
		}
	case "":
		return fmt.Errorf("%w: graph needs a path or a generator", ErrInvalid)
	default:
		return fmt.Errorf("%w: unknown generator %q (have %v)", ErrInvalid, g.Generator, Generators)
	}
	return nil
}
