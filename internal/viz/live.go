package viz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/merement/Dice/internal/graph"
	"github.com/merement/Dice/internal/optim"
	"github.com/merement/Dice/internal/rounding"
)

const (
	plotWidth   = 48
	plotHeight  = 8
	phaseWidth  = 24
	phaseHeight = 12
	barWidth    = 20
)

// RoundMsg carries one completed branch round.
type RoundMsg optim.Round

// DoneMsg carries the outcome of the search.
type DoneMsg struct {
	Result *optim.Result
	Err    error
}

type TickMsg time.Time

// Feed moves solver callbacks into the Bubble Tea event loop.
// Sends block until the view takes the message or the feed is closed.
type Feed struct {
	msgs chan tea.Msg
	quit chan struct{}
	once sync.Once
}

func NewFeed() *Feed {
	return &Feed{msgs: make(chan tea.Msg, 64), quit: make(chan struct{})}
}

// OnRound has the signature expected by optim.OnRound.
func (f *Feed) OnRound(r optim.Round) { f.send(RoundMsg(r)) }

func (f *Feed) Done(res *optim.Result, err error) { f.send(DoneMsg{Result: res, Err: err}) }

// Close releases blocked senders. It is safe to call more than once.
func (f *Feed) Close() { f.once.Do(func() { close(f.quit) }) }

func (f *Feed) send(msg tea.Msg) {
	select {
	case f.msgs <- msg:
	case <-f.quit:
	}
}

// Next waits for the following message.
func (f *Feed) Next() tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-f.msgs:
			return msg
		case <-f.quit:
			return nil
		}
	}
}

// Model is the live search view.
type Model struct {
	title    string
	graph    *graph.Graph
	maxDepth int
	feed     *Feed

	rounds    []optim.Round
	result    *optim.Result
	err       error
	done      bool
	threshold float64
	hasPhase  bool

	theme      Theme
	styles     Styles
	frame      int
	started    time.Time
	showHelp   bool
	showPhases bool
}

func NewModel(title string, g *graph.Graph, maxDepth int, feed *Feed) Model {
	return Model{
		title:      title,
		graph:      g,
		maxDepth:   maxDepth,
		feed:       feed,
		rounds:     make([]optim.Round, 0, maxDepth),
		theme:      ThemeCyberpunk,
		styles:     NewStyles(ThemeCyberpunk),
		started:    time.Now(),
		showPhases: true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/12, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.feed.Next(), tick())
}

// Rounds returns the rounds received so far.
func (m Model) Rounds() []optim.Round { return m.rounds }

func (m Model) Done() bool { return m.done }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			m.theme = m.theme.next()
			m.styles = NewStyles(m.theme)
		case "p":
			m.showPhases = !m.showPhases
		case "?":
			m.showHelp = !m.showHelp
		}
	case RoundMsg:
		m.rounds = append(m.rounds, optim.Round(msg))
		return m, m.feed.Next()
	case DoneMsg:
		m.done = true
		m.result, m.err = msg.Result, msg.Err
		if m.result != nil && m.graph != nil && len(m.result.Relaxed) == m.graph.N() {
			if r, err := rounding.BestRounding(m.graph, m.result.Relaxed); err == nil {
				m.threshold, m.hasPhase = r.Threshold, true
			}
		}
		return m, nil
	case TickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m Model) status() string {
	s := m.styles
	switch {
	case !m.done:
		return s.Improved.Render(AnimatedSpinner(m.frame) + " SEARCHING")
	case m.result == nil:
		return s.Failed.Render("FAILED")
	case m.result.State == optim.Canceled:
		return s.Stalled.Render("CANCELED")
	case m.result.State == optim.DepthExceeded:
		return s.Stalled.Render("DEPTH EXCEEDED")
	}
	return s.Improved.Render("SATURATED")
}

func (m Model) line(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if m.graph != nil {
		b.WriteString(m.line("Graph", fmt.Sprintf("%d nodes, %d edges", m.graph.N(), m.graph.M())))
		b.WriteString(m.line("Total weight", fmt.Sprintf("%.6g", m.graph.TotalWeight())))
	}

	trials := 0
	for _, r := range m.rounds {
		trials += r.Trials
	}
	depth := float64(len(m.rounds))
	if m.maxDepth > 0 {
		depth /= float64(m.maxDepth)
	}
	b.WriteString(m.line("Rounds", fmt.Sprintf("%d/%d ", len(m.rounds), m.maxDepth)) + s.ProgressBar(depth, barWidth) + "\n")
	b.WriteString(m.line("Trials", fmt.Sprintf("%d", trials)))

	if n := len(m.rounds); n > 0 {
		last := m.rounds[n-1]
		b.WriteString(m.line("Best cut", fmt.Sprintf("%.6g", last.Best)))
		if m.graph != nil && m.graph.TotalWeight() > 0 {
			b.WriteString(m.line("Cut ratio", fmt.Sprintf("%.4f", last.Best/m.graph.TotalWeight())))
		}
		b.WriteString(m.line("Last round", fmt.Sprintf("scan %.6g, polished %.6g, %d flips", last.ScanCut, last.Cut, last.Flips)))
	}

	elapsed := time.Since(m.started)
	if m.result != nil {
		elapsed = m.result.Elapsed
	}
	b.WriteString(m.line("Elapsed", elapsed.Round(time.Millisecond).String()))
	if m.err != nil {
		b.WriteString(s.Failed.Render("error: "+m.err.Error()) + "\n")
	}

	if len(m.rounds) > 1 {
		b.WriteString("\n" + s.Label.Render("Trials/round") + s.SparkMid.Render(Sparkline(TrialCounts(m.rounds), barWidth)) + "\n")
	}
	if chart := PlotHistory(m.rounds, plotWidth, plotHeight); chart != "" {
		b.WriteString(s.Graph.Render(chart) + "\n")
	}
	b.WriteString(s.Separator(plotWidth) + "\n")
	b.WriteString(s.KeyHint.Render("Q:Quit  T:Theme  P:Phases  ?:Help"))

	view := s.Panel.Render(b.String())
	if m.showPhases && m.hasPhase {
		portrait := PhasePortrait(m.result.Relaxed, m.threshold, phaseWidth, phaseHeight)
		caption := s.Subtle.Render(fmt.Sprintf("relaxed phases, threshold %.3f", m.threshold))
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, s.Panel.Render(s.Graph.Render(portrait)+"\n"+caption))
	}
	if m.showHelp {
		help := strings.Join([]string{
			"KEYBOARD SHORTCUTS",
			"",
			"Q, Ctrl+C  stop the search and quit",
			"T          cycle themes",
			"P          toggle the phase portrait",
			"?          toggle this help",
		}, "\n")
		return s.HelpOverlay.Render(help) + "\n\n" + view
	}
	return view
}

// Run shows the live view while search runs. Quitting the view cancels the
// search; the search outcome is returned either way.
func Run(ctx context.Context, m Model, search func(context.Context) (*optim.Result, error)) (*optim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		res *optim.Result
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := search(ctx)
		m.feed.Done(res, err)
		out <- outcome{res, err}
	}()

	_, uiErr := tea.NewProgram(m, tea.WithAltScreen()).Run()
	cancel()
	m.feed.Close()

	o := <-out
	if o.err != nil {
		return o.res, o.err
	}
	return o.res, uiErr
}
