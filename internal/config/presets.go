package config

import (
	"fmt"
	"sort"
	"time"
)

// Presets are complete run configurations selectable by name.
var Presets = map[string]*Config{
	"quick": {
		Graph:  GraphConfig{Generator: "regular", Nodes: 50, Degree: 3},
		Model:  ModelConfig{Coupling: "triangular", Integrator: "euler"},
		Solver: SolverConfig{Steps: 100, Trials: 4, TrialGrowth: 1, Domain: 0.5, Kick: 0.5, MaxDepth: 10},
		Seed:   1, Verbosity: 2,
	},
	"regular3": {
		Graph:  GraphConfig{Generator: "regular", Nodes: 800, Degree: 3},
		Model:  ModelConfig{Coupling: "sine", Integrator: "euler"},
		Solver: SolverConfig{Steps: 300, Trials: 16, TrialGrowth: 4, Domain: 0.5, Kick: 0.5, MaxDepth: 50},
		Seed:   1, Verbosity: 2,
	},
	"torus": {
		Graph:  GraphConfig{Generator: "torus", Rows: 20, Cols: 20},
		Model:  ModelConfig{Coupling: "squarish", Integrator: "euler", Scale: 0.1},
		Solver: SolverConfig{Steps: 200, Trials: 8, TrialGrowth: 2, Domain: 0.3, Kick: 0.3, MaxDepth: 30},
		Seed:   1, Verbosity: 2,
	},
	"weighted": {
		Graph:  GraphConfig{Generator: "random", Nodes: 200, Probability: 0.05, MinWeight: 0.5, MaxWeight: 2},
		Model:  ModelConfig{Coupling: "skewed", Integrator: "euler", Anisotropy: -0.1},
		Solver: SolverConfig{Steps: 250, Trials: 12, TrialGrowth: 2, Domain: 0.5, Kick: 0.5, MaxDepth: 40},
		Seed:   1, Verbosity: 2,
	},
	"thorough": {
		Graph:  GraphConfig{Generator: "regular", Nodes: 2000, Degree: 3},
		Model:  ModelConfig{Coupling: "fastsine", Integrator: "euler", Noise: 0.01, DivergenceFactor: 50},
		Solver: SolverConfig{Steps: 500, Trials: 32, TrialGrowth: 8, Domain: 0.7, Kick: 0.5, MaxDepth: 100, Timeout: 5 * time.Minute},
		Seed:   1, Verbosity: 2,
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownPreset, name, ListPresets())
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
