package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sine", cfg.Model.Coupling)
	assert.Equal(t, "regular", cfg.Graph.Generator)
	assert.Positive(t, cfg.Solver.Steps)
	require.NoError(t, cfg.Validate())

	opts := cfg.Solver.Options(cfg.Seed)
	assert.Equal(t, DefaultTrials, opts.Trials)
	assert.Equal(t, int64(DefaultSeed), opts.Seed)
	require.NoError(t, opts.Validate())
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		cfg, err := GetPreset(name)
		require.NoError(t, err, name)
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg, err := GetPreset("quick")
	require.NoError(t, err)
	cfg.Solver.Trials = 999

	again, err := GetPreset("quick")
	require.NoError(t, err)
	assert.Equal(t, 4, again.Solver.Trials)
}

func TestGetPresetNotFound(t *testing.T) {
	_, err := GetPreset("nonexistent")
	require.ErrorIs(t, err, ErrUnknownPreset)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
graph:
  generator: torus
  rows: 5
  cols: 6
model:
  coupling: triangular
solver:
  trials: 3
  timeout: 30s
seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "torus", cfg.Graph.Generator)
	assert.Equal(t, 5, cfg.Graph.Rows)
	assert.Equal(t, "triangular", cfg.Model.Coupling)
	assert.Equal(t, DefaultIntegrator, cfg.Model.Integrator)
	assert.Equal(t, 3, cfg.Solver.Trials)
	assert.Equal(t, DefaultSteps, cfg.Solver.Steps)
	assert.Equal(t, 30*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, int64(42), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Model.Coupling = "skewed"
	cfg.Graph.MinWeight = 0.5
	cfg.Graph.MaxWeight = 2
	cfg.Solver.Timeout = time.Minute

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver: [1, 2"), 0644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no graph", func(c *Config) { c.Graph.Generator = "" }},
		{"unknown generator", func(c *Config) { c.Graph.Generator = "petersen" }},
		{"odd regular", func(c *Config) { c.Graph.Nodes = 5; c.Graph.Degree = 3 }},
		{"small torus", func(c *Config) { c.Graph.Generator = "torus"; c.Graph.Rows = 2; c.Graph.Cols = 5 }},
		{"bad probability", func(c *Config) { c.Graph.Generator = "random"; c.Graph.Probability = 0 }},
		{"bad weights", func(c *Config) { c.Graph.MinWeight = 2; c.Graph.MaxWeight = 1 }},
		{"unknown coupling", func(c *Config) { c.Model.Coupling = "cosine" }},
		{"unknown integrator", func(c *Config) { c.Model.Integrator = "verlet" }},
		{"negative scale", func(c *Config) { c.Model.Scale = -1 }},
		{"negative noise", func(c *Config) { c.Model.Noise = -1 }},
		{"bad solver", func(c *Config) { c.Solver.Steps = 1 }},
		{"negative timeout", func(c *Config) { c.Solver.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := DefaultConfig()
	cfg.Graph = GraphConfig{Path: "graph.txt"}
	assert.NoError(t, cfg.Validate())
}
