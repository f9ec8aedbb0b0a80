package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/metrics"
)

var (
	dataDir     string
	verbosity   int
	metricsAddr string

	configFile string
	preset     string
	seed       int64
	runName    string
	noSave     bool

	graphFile   string
	generator   string
	nodes       int
	degree      int
	probability float64
	rows        int
	cols        int
	maxWeight   float64

	coupling   string
	integrator string
	scale      float64
	anisotropy float64
	noise      float64

	steps    int
	trials   int
	maxDepth int
	workers  int
	timeout  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dice",
		Short:         "max-cut search by oscillator relaxation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dice", "run store directory")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", logging.DefaultVerbosity, "messages with importance above this are logged (1-4)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "search for a large cut",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "search with a live progress view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search over coupling scale and anisotropy",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().String("scales", "0.1,0.2,0.3", "comma separated coupling scales")
	tuneCmd.Flags().String("anisotropies", "0", "comma separated anisotropy values")

	for _, c := range []*cobra.Command{solveCmd, liveCmd, tuneCmd} {
		addRunFlags(c)
	}
	solveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")

	exactCmd := &cobra.Command{
		Use:   "exact [graph-file]",
		Short: "exact max-cut by enumeration (at most 20 nodes)",
		Args:  cobra.ExactArgs(1),
		RunE:  runExact,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [output-file]",
		Short: "write a generated graph in the sparse text format",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	addGraphFlags(generateCmd)
	generateCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the cut history of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as one JSON document",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().String("svg", "", "also write the cut history as SVG to this file")
	exportCmd.Flags().String("phase-svg", "", "also write the relaxed phases as SVG to this file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time propagation, rounding and local search",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().Int("repeat", 5, "repetitions per step count")

	rootCmd.AddCommand(solveCmd, liveCmd, tuneCmd, exactCmd, generateCmd,
		listCmd, showCmd, plotCmd, exportCmd, presetsCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addGraphFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&generator, "generator", config.DefaultGenerator, "graph family: "+strings.Join(config.Generators, ", "))
	f.IntVar(&nodes, "nodes", config.DefaultNodes, "node count")
	f.IntVar(&degree, "degree", config.DefaultDegree, "degree (regular)")
	f.Float64Var(&probability, "prob", config.DefaultProbability, "edge probability (random)")
	f.IntVar(&rows, "rows", 0, "rows (torus)")
	f.IntVar(&cols, "cols", 0, "columns (torus)")
	f.Float64Var(&maxWeight, "max-weight", 0, "draw edge weights uniformly from [1, max-weight]")
}

func addRunFlags(c *cobra.Command) {
	addGraphFlags(c)
	f := c.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.StringVar(&runName, "name", "", "run name (defaults to the generator or graph file)")
	f.BoolVar(&noSave, "no-save", false, "do not store the run")
	f.StringVarP(&graphFile, "graph", "g", "", "graph file (overrides the generator)")

	f.StringVar(&coupling, "coupling", config.DefaultCoupling, "coupling kernel")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator: euler, heun, rk4")
	f.Float64Var(&scale, "scale", 0, "coupling scale (0 selects 1/max degree)")
	f.Float64Var(&anisotropy, "anisotropy", 0, "anisotropy Ks")
	f.Float64Var(&noise, "noise", 0, "noise amplitude")

	f.IntVar(&steps, "steps", config.DefaultSteps, "propagation steps per trial")
	f.IntVar(&trials, "trials", config.DefaultTrials, "trials in the first round")
	f.IntVar(&maxDepth, "depth", config.DefaultMaxDepth, "maximum branch rounds")
	f.IntVar(&workers, "workers", 0, "parallel trials (0 selects GOMAXPROCS)")
	f.DurationVar(&timeout, "timeout", 0, "stop the search after this long")
}

// loadConfig layers preset, config file and explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	var err error
	if preset != "" {
		if cfg, err = config.GetPreset(preset); err != nil {
			return nil, err
		}
	}
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("seed", func() { cfg.Seed = seed })
	set("graph", func() { cfg.Graph.Path = graphFile })
	set("generator", func() { cfg.Graph.Generator = generator })
	set("nodes", func() { cfg.Graph.Nodes = nodes })
	set("degree", func() { cfg.Graph.Degree = degree })
	set("prob", func() { cfg.Graph.Probability = probability })
	set("rows", func() { cfg.Graph.Rows = rows })
	set("cols", func() { cfg.Graph.Cols = cols })
	set("max-weight", func() { cfg.Graph.MinWeight, cfg.Graph.MaxWeight = 1, maxWeight })
	set("coupling", func() { cfg.Model.Coupling = coupling })
	set("integrator", func() { cfg.Model.Integrator = integrator })
	set("scale", func() { cfg.Model.Scale = scale })
	set("anisotropy", func() { cfg.Model.Anisotropy = anisotropy })
	set("noise", func() { cfg.Model.Noise = noise })
	set("steps", func() { cfg.Solver.Steps = steps })
	set("trials", func() { cfg.Solver.Trials = trials })
	set("depth", func() { cfg.Solver.MaxDepth = maxDepth })
	set("workers", func() { cfg.Solver.Workers = workers })
	set("timeout", func() { cfg.Solver.Timeout = timeout })
	set("verbosity", func() { cfg.Verbosity = verbosity })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEmitter() logging.Emitter {
	return logging.NewText(os.Stderr, verbosity)
}

func defaultRunName(cfg *config.Config) string {
	if cfg.Graph.Path != "" {
		base := cfg.Graph.Path
		if i := strings.LastIndexAny(base, `/\`); i >= 0 {
			base = base[i+1:]
		}
		return strings.TrimSuffix(base, ".txt")
	}
	return cfg.Graph.Generator
}

// serveMetrics registers the solver collectors on a fresh registry and
// serves it until the returned stop function is called. An empty addr
// still returns usable collectors.
func serveMetrics(addr string, log logging.Emitter) (*metrics.Solver, func()) {
	reg := prometheus.NewRegistry()
	sm := metrics.NewSolver(reg)
	if addr == "" {
		return sm, func() {}
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Emit(logging.Warn, "metrics server stopped", "addr", addr, "err", err)
		}
	}()
	log.Emit(logging.Info, "serving metrics", "addr", addr)
	return sm, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// parseFloats reads a comma separated list such as "0.1,0.2".
func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}
