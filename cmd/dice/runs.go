package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/merement/Dice/internal/export"
	"github.com/merement/Dice/internal/optim"
	"github.com/merement/Dice/internal/storage"
	"github.com/merement/Dice/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNODES\tEDGES\tCUT\tSTATE\tROUNDS\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.6g\t%s\t%d\t%s\n",
			r.ID, r.Nodes, r.Edges, r.Cut, r.State, r.Rounds, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	conf, _, err := st.LoadConfiguration(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("graph: %d nodes, %d edges, total weight %.6g\n", meta.Nodes, meta.Edges, meta.TotalWeight)
	fmt.Printf("model: %s coupling, %s integrator, scale %.4g, seed %d\n", meta.Coupling, meta.Integrator, meta.Scale, meta.Seed)
	fmt.Printf("cut: %.6g\n", meta.Cut)
	fmt.Printf("state: %s after %d rounds, %d trials, %d ms\n", meta.State, meta.Rounds, meta.Trials, meta.ElapsedMS)
	if len(conf) <= maxPrinted {
		fmt.Printf("configuration: %s\n", formatConfiguration(conf))
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %.6g\n", name, meta.Metrics[name])
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("run %s has no rounds", meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("rounds: %d\n\n", len(history))
	fmt.Println(viz.PlotHistory(history, 80, 12))
	if len(history) > 1 {
		fmt.Printf("\ntrials/round %s\n", viz.Sparkline(viz.TrialCounts(history), 40))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	conf, relaxed, err := st.LoadConfiguration(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	res := &optim.Result{
		Cut:           meta.Cut,
		Configuration: conf,
		Relaxed:       relaxed,
		Rounds:        meta.Rounds,
		Trials:        meta.Trials,
		History:       history,
	}
	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		svg, err := export.HistorySVG(history, 800, 400)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("phase-svg"); path != "" {
		svg, err := export.PhaseSVG(relaxed, conf, 400)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
	}
	return storage.ExportJSON(os.Stdout, *meta, res)
}
