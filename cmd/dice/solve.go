package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/experiment"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/logging"
	"github.com/merement/Dice/internal/optim"
	"github.com/merement/Dice/internal/storage"
	"github.com/merement/Dice/internal/viz"
)

// maxPrinted bounds the configurations written to stdout.
const maxPrinted = 64

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newEmitter()
	sm, stopMetrics := serveMetrics(metricsAddr, log)
	defer stopMetrics()

	exp := experiment.New(cfg, log)
	if err := exp.Setup(nil, optim.WithMetrics(sm)); err != nil {
		return err
	}
	printGraph(exp.Graph())

	res, err := exp.Run(cmd.Context())
	if err != nil {
		if res == nil {
			return err
		}
		log.Emit(logging.Warn, "search interrupted", "err", err)
	}
	return finishRun(exp, res)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the view while it runs
	sm, stopMetrics := serveMetrics(metricsAddr, logging.Discard())
	defer stopMetrics()

	feed := viz.NewFeed()
	exp := experiment.New(cfg, logging.Discard())
	if err := exp.Setup(nil, optim.WithMetrics(sm), optim.OnRound(feed.OnRound)); err != nil {
		return err
	}

	title := runName
	if title == "" {
		title = defaultRunName(cfg)
	}
	view := viz.NewModel(title, exp.Graph(), cfg.Solver.MaxDepth, feed)
	res, err := viz.Run(cmd.Context(), view, exp.Run)
	if err != nil && (res == nil || !stopped(err)) {
		return err
	}
	printGraph(exp.Graph())
	return finishRun(exp, res)
}

func printGraph(g *graph.Graph) {
	fmt.Printf("graph: %d nodes, %d edges, total weight %.6g\n", g.N(), g.M(), g.TotalWeight())
}

func finishRun(exp *experiment.Experiment, res *optim.Result) error {
	cfg := exp.Config()
	g := exp.Graph()
	diag := exp.Diagnose(res)

	fmt.Printf("cut: %.6g (%.4f of total weight)\n", res.Cut, res.Cut/g.TotalWeight())
	fmt.Printf("state: %s after %d rounds, %d trials, %s\n", res.State, res.Rounds, res.Trials, res.Elapsed)
	if g.N() <= maxPrinted {
		fmt.Printf("configuration: %s\n", formatConfiguration(res.Configuration))
	}
	names := make([]string, 0, len(diag))
	for name := range diag {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %.6g\n", name, diag[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	name := runName
	if name == "" {
		name = defaultRunName(cfg)
	}
	meta := storage.NewMetadata(name, exp.Model(), cfg.Seed, res)
	meta.Config = cfg
	meta.Metrics = diag
	id, err := st.Save(meta, res)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func formatConfiguration(c graph.Configuration) string {
	var b strings.Builder
	for _, s := range c {
		if s > 0 {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func runExact(cmd *cobra.Command, args []string) error {
	g, err := graph.Load(args[0])
	if err != nil {
		return err
	}
	printGraph(g)
	cut, conf, err := graph.BruteForce(g)
	if err != nil {
		return err
	}
	fmt.Printf("max cut: %.6g\n", cut)
	fmt.Printf("configuration: %s\n", formatConfiguration(conf))
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rawScales, _ := cmd.Flags().GetString("scales")
	rawKs, _ := cmd.Flags().GetString("anisotropies")
	scales, err := parseFloats(rawScales)
	if err != nil {
		return err
	}
	ks, err := parseFloats(rawKs)
	if err != nil {
		return err
	}

	log := newEmitter()
	g, err := experiment.New(cfg, log).BuildGraph()
	if err != nil {
		return err
	}
	printGraph(g)

	grid, err := optim.NewGridSearch([]string{"scale", "anisotropy"}, [][]float64{scales, ks})
	if err != nil {
		return err
	}
	best, all, err := grid.Search(cmd.Context(), func(ctx context.Context, p map[string]float64) (float64, error) {
		c := cfg.Clone()
		c.Model.Scale = p["scale"]
		c.Model.Anisotropy = p["anisotropy"]
		return tunePoint(ctx, c, g)
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tANISOTROPY\tCUT")
	for _, pt := range all {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.6g\n", pt.Params["scale"], pt.Params["anisotropy"], pt.Score)
	}
	w.Flush()
	fmt.Printf("best: scale=%.4g anisotropy=%.4g cut=%.6g\n", best.Params["scale"], best.Params["anisotropy"], best.Score)
	return nil
}

func tunePoint(ctx context.Context, cfg *config.Config, g *graph.Graph) (float64, error) {
	exp := experiment.New(cfg, logging.Discard())
	if err := exp.Setup(g); err != nil {
		return 0, err
	}
	res, err := exp.Run(ctx)
	if err != nil && (res == nil || !errors.Is(err, context.DeadlineExceeded)) {
		return 0, err
	}
	return res.Cut, nil
}

// stopped reports whether err only says the search was cut short.
func stopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
