package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/identity"
	"github.com/wippyai/script-bridge/uithread"
	"github.com/wippyai/script-bridge/workload"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const watchRefresh = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a workload with a live view of the queues",
	Long: `Runs the same workload as simulate and shows the task queue, the
per-context command queues and the native mirror table while disposals
drain. Press r to run another round and q to quit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch needs a terminal, use simulate instead")
	}

	// Log lines would tear the alternate screen.
	engine.SetLogger(zap.NewNop())
	uithread.SetLogger(zap.NewNop())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	h := workload.NewHarness(ctx, uithread.WithInterval(cfg.Loop.Interval))
	h.Start(ctx)
	defer h.Stop(context.Background())

	p := tea.NewProgram(newWatchModel(ctx, h, workloadOptions(cfg)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type queueRow struct {
	context identity.ContextID
	pending int
	mirrors int
}

type watchSnapshot struct {
	counts  workload.Counts
	stats   uithread.Stats
	queues  []queueRow
	tasks   int
	mirrors int
	engine  int
}

func takeSnapshot(h *workload.Harness) watchSnapshot {
	s := watchSnapshot{
		counts:  h.Tracker.Counts(),
		stats:   h.Loop.Stats(),
		tasks:   h.Bridge.Tasks().Len(),
		mirrors: h.Table.Len(),
		engine:  h.Engine.Len(),
	}

	seen := make(map[identity.ContextID]bool)
	for _, q := range h.Bridge.Commands().Snapshot() {
		id := q.Context()
		seen[id] = true
		s.queues = append(s.queues, queueRow{context: id, pending: q.Len(), mirrors: h.Table.ContextLen(id)})
	}
	for _, id := range h.Table.Contexts() {
		if !seen[id] {
			s.queues = append(s.queues, queueRow{context: id, mirrors: h.Table.ContextLen(id)})
		}
	}
	return s
}

type tickMsg time.Time

type roundDoneMsg struct {
	err    error
	report *workload.Report
}

type watchModel struct {
	ctx      context.Context
	err      error
	harness  *workload.Harness
	report   *workload.Report
	spinner  spinner.Model
	opts     workload.Options
	snapshot watchSnapshot
	round    int
	running  bool
}

func newWatchModel(ctx context.Context, h *workload.Harness, opts workload.Options) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle
	return &watchModel{ctx: ctx, harness: h, opts: opts, spinner: s}
}

func tick() tea.Cmd {
	return tea.Tick(watchRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(), m.startRound())
}

func (m *watchModel) startRound() tea.Cmd {
	m.running = true
	m.round++
	opts := m.opts
	opts.Seed += uint64(m.round - 1)

	return func() tea.Msg {
		report, err := workload.Run(m.ctx, m.harness.Engine, opts)
		if err == nil {
			err = workload.Settle(m.ctx, m.harness.Tracker, cfg.Workload.SettleWait)
		}
		return roundDoneMsg{report: report, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if !m.running {
				m.err = nil
				return m, m.startRound()
			}
		}

	case tickMsg:
		m.snapshot = takeSnapshot(m.harness)
		return m, tick()

	case roundDoneMsg:
		m.running = false
		m.report = msg.report
		m.err = msg.err
		m.snapshot = takeSnapshot(m.harness)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder
	s := m.snapshot

	b.WriteString(titleStyle.Render("Script Bridge"))
	b.WriteString(fmt.Sprintf(" round %d ", m.round))
	if m.running {
		b.WriteString(m.spinner.View())
		b.WriteString(" running")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("failed"))
	} else {
		b.WriteString(doneStyle.Render("settled"))
	}
	b.WriteString("\n\n")

	field := func(label string, value any) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(valueStyle.Render(fmt.Sprint(value)))
		b.WriteString("\n")
	}
	field("live contexts", s.engine)
	field("task queue", s.tasks)
	field("native mirrors", s.mirrors)
	field("objects created", s.counts.Created)
	field("disposed", fmt.Sprintf("%d (release %d, collector %d, context %d)",
		s.counts.Disposed, s.counts.Release, s.counts.Collector, s.counts.Context))
	field("outstanding", s.counts.Outstanding())
	field("ui loop", fmt.Sprintf("%d flushes, %d tasks, %d commands, %d failures",
		s.stats.Flushes, s.stats.Tasks, s.stats.Commands, s.stats.Failures))

	if len(s.queues) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s %-10s %s", "context", "pending", "mirrors")))
		b.WriteString("\n")
		for _, q := range s.queues {
			b.WriteString(fmt.Sprintf("%-10d %-10d %d\n", q.context, q.pending, q.mirrors))
		}
	}

	if m.report != nil && !m.running {
		t := m.report.Totals()
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("last round: %d created, %d released, %d forgotten, %d kept in %s\n",
			t.Created, t.Released, t.Forgotten, t.Kept, t.Duration.Round(time.Millisecond)))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r run again • q quit"))
	return b.String()
}
