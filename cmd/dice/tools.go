package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/merement/Dice/internal/config"
	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/experiment"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/refine"
	"github.com/merement/Dice/internal/rounding"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := experiment.New(cfg, newEmitter()).BuildGraph()
	if err != nil {
		return err
	}
	if err := graph.Save(args[0], g); err != nil {
		return err
	}
	printGraph(g)
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGRAPH\tNODES\tCOUPLING\tINTEGRATOR\tSTEPS\tTRIALS")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%d\n", name, p.Graph.Generator, p.Graph.Nodes,
			p.Model.Coupling, p.Model.Integrator, p.Solver.Steps, p.Solver.Trials)
	}
	return w.Flush()
}

// runBench times one propagation, one rounding and one polish per
// repetition at a few step counts around the configured one.
func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	repeat, _ := cmd.Flags().GetInt("repeat")
	if repeat < 1 {
		repeat = 1
	}

	exp := experiment.New(cfg, newEmitter())
	if err := exp.Setup(nil); err != nil {
		return err
	}
	g, m := exp.Graph(), exp.Model()
	printGraph(g)
	fmt.Printf("coupling: %s, integrator: %s, scale: %.4g\n\n", cfg.Model.Coupling, m.IntegratorName(), m.Scale())

	rng := rand.New(rand.NewSource(cfg.Seed))
	base := cfg.Solver.Steps
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tPROPAGATE\tROUNDING\tREFINE\tMEAN CUT\tBEST CUT")
	for _, steps := range []int{base / 4, base / 2, base, base * 2} {
		if steps < 1 {
			continue
		}
		var prop, round, ref time.Duration
		var sum, best float64
		for i := 0; i < repeat; i++ {
			v0 := make(dynamo.State, g.N())
			for j := range v0 {
				v0[j] = 4*rng.Float64() - 2
			}

			start := time.Now()
			v := m.Propagate(v0, steps, nil)
			prop += time.Since(start)

			start = time.Now()
			r, err := rounding.BestRounding(g, v)
			if err != nil {
				return err
			}
			round += time.Since(start)

			start = time.Now()
			_, err = refine.Polish(g, r.Configuration, refine.Options{MaxPasses: cfg.Solver.MaxPasses})
			if err != nil && !errors.Is(err, refine.ErrPassLimit) {
				return err
			}
			ref += time.Since(start)

			cut, err := graph.Cut(g, r.Configuration)
			if err != nil {
				return err
			}
			sum += cut
			best = max(best, cut)
		}
		n := time.Duration(repeat)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.6g\t%.6g\n", steps, prop/n, round/n, ref/n, sum/float64(repeat), best)
	}
	return w.Flush()
}
