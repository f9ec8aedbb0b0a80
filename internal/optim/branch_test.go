package optim_test

import (
	"context"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/merement/Dice/internal/dynamo"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/metrics"
	"github.com/merement/Dice/internal/optim"
)

func solverFor(g *graph.Graph, mutate func(*optim.Options), extra ...optim.SolverOption) *optim.Solver {
	m, err := dynamo.NewModel(g, dynamo.WithScale(0.05))
	Expect(err).NotTo(HaveOccurred())
	opts := optim.DefaultOptions()
	opts.Steps = 150
	if mutate != nil {
		mutate(&opts)
	}
	s, err := optim.New(m, opts, extra...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func gathered(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

var _ = Describe("Branch", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("on the 4-cycle", func() {
		It("finds the alternating cut and saturates", func() {
			g, err := graph.Cycle(4)
			Expect(err).NotTo(HaveOccurred())

			res, err := solverFor(g, nil).Branch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Cut).To(Equal(4.0))
			Expect(res.State).To(Equal(optim.Saturated))
			Expect(res.Rounds).To(Equal(2))

			cut, err := graph.Cut(g, res.Configuration)
			Expect(err).NotTo(HaveOccurred())
			Expect(cut).To(Equal(4.0))
		})
	})

	Context("on small graphs", func() {
		It("matches exhaustive search on K5", func() {
			g, err := graph.Complete(5)
			Expect(err).NotTo(HaveOccurred())
			want, _, err := graph.BruteForce(g)
			Expect(err).NotTo(HaveOccurred())

			res, err := solverFor(g, nil).Branch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Cut).To(Equal(want))
		})

		It("stays close to the optimum on random graphs", func() {
			rng := rand.New(rand.NewSource(17))
			for i := 0; i < 4; i++ {
				g, err := graph.Random(14, 0.4, rng)
				Expect(err).NotTo(HaveOccurred())
				want, _, err := graph.BruteForce(g)
				Expect(err).NotTo(HaveOccurred())

				res, err := solverFor(g, func(o *optim.Options) { o.Seed = int64(i + 1) }).Branch(ctx, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Cut).To(BeNumerically("<=", want))
				Expect(res.Cut).To(BeNumerically(">=", 0.85*want))
			}
		})
	})

	Context("history", func() {
		It("records strictly improving rounds and a growing trial budget", func() {
			g, err := graph.RandomRegular(60, 3, rand.New(rand.NewSource(9)))
			Expect(err).NotTo(HaveOccurred())

			var seen []optim.Round
			s := solverFor(g, func(o *optim.Options) {
				o.Trials = 4
				o.TrialGrowth = 3
			}, optim.OnRound(func(r optim.Round) { seen = append(seen, r) }))

			res, err := s.Branch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(res.History))
			Expect(res.History).To(HaveLen(res.Rounds))

			prev := 0.0
			total := 0
			for i, r := range res.History {
				Expect(r.Index).To(Equal(i + 1))
				Expect(r.Trials).To(Equal(4 + 3*i))
				Expect(r.Cut).To(BeNumerically(">=", r.ScanCut))
				Expect(r.Best).To(BeNumerically(">=", prev))
				Expect(r.Improved).To(Equal(r.Cut > prev))
				prev = r.Best
				total += r.Trials
			}
			Expect(res.Trials).To(Equal(total))
			Expect(res.Cut).To(Equal(prev))
			if res.State == optim.Saturated {
				Expect(res.History[len(res.History)-1].Improved).To(BeFalse())
			}
		})
	})

	Context("termination", func() {
		It("stops at the depth limit", func() {
			g, err := graph.Cycle(8)
			Expect(err).NotTo(HaveOccurred())

			res, err := solverFor(g, func(o *optim.Options) { o.MaxDepth = 1 }).Branch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.State).To(Equal(optim.DepthExceeded))
			Expect(res.Rounds).To(Equal(1))
			Expect(res.Cut).To(BeNumerically(">", 0))
		})

		It("returns the best so far when canceled", func() {
			g, err := graph.Cycle(8)
			Expect(err).NotTo(HaveOccurred())
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			start := optim.Center(graph.Configuration{1, -1, 1, -1, 1, -1, 1, 1})
			res, err := solverFor(g, nil).Branch(cctx, start)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res).NotTo(BeNil())
			Expect(res.State).To(Equal(optim.Canceled))
			Expect(res.Rounds).To(Equal(0))
			Expect(res.Cut).To(Equal(6.0))
		})

		It("rejects a start of the wrong length", func() {
			g, err := graph.Cycle(4)
			Expect(err).NotTo(HaveOccurred())
			_, err = solverFor(g, nil).Branch(ctx, dynamo.State{0, 0})
			Expect(err).To(MatchError(graph.ErrSizeMismatch))
		})
	})

	Context("metrics", func() {
		It("exports rounds, trials and the best cut", func() {
			g, err := graph.Torus(4, 4)
			Expect(err).NotTo(HaveOccurred())
			reg := prometheus.NewRegistry()

			res, err := solverFor(g, nil, optim.WithMetrics(metrics.NewSolver(reg))).Branch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(gathered(reg, "dice_rounds_total")).To(Equal(float64(res.Rounds)))
			Expect(gathered(reg, "dice_trials_total")).To(Equal(float64(res.Trials)))
			Expect(gathered(reg, "dice_best_cut")).To(Equal(res.Cut))
		})
	})
})

var _ = Describe("SearchState", func() {
	DescribeTable("String",
		func(s optim.SearchState, want string) {
			Expect(s.String()).To(Equal(want))
		},
		Entry("improving", optim.Improving, "improving"),
		Entry("saturated", optim.Saturated, "saturated"),
		Entry("depth", optim.DepthExceeded, "depth-exceeded"),
		Entry("canceled", optim.Canceled, "canceled"),
	)
})
