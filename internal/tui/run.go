package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdturney/spots-and-stripes/internal/evolve"
)

// RunModel is the live dashboard for a running experiment. It consumes
// checkpoint snapshots from the engine's progress channel and draws the
// current champion next to the target pattern.
type RunModel struct {
	rule       string
	target     int
	targetGrid string
	multistate bool

	snapshots <-chan evolve.Progress
	latest    evolve.Progress
	seen      bool
	done      bool
	err       error

	bar  progress.Model
	spin spinner.Model
}

type snapshotMsg evolve.Progress

type runDoneMsg struct{}

// RunErrMsg aborts the dashboard with an engine error. The driver sends it
// through Program.Send when Engine.Run fails.
type RunErrMsg struct{ Err error }

// NewRunModel builds a dashboard fed by ch. The channel should be buffered;
// the engine drops intermediate snapshots rather than block on it.
func NewRunModel(ch <-chan evolve.Progress, e *evolve.Engine, targetNumber int) RunModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return RunModel{
		rule:       e.RuleName(),
		target:     targetNumber,
		targetGrid: RenderGrid(e.TargetGrid(), e.Palette() == evolve.PaletteImmigration),
		multistate: e.Palette() == evolve.PaletteImmigration,
		snapshots:  ch,
		bar:        progress.New(progress.WithDefaultGradient()),
		spin:       sp,
	}
}

func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForSnapshot(m.snapshots))
}

// waitForSnapshot blocks on the next checkpoint from the engine.
func waitForSnapshot(ch <-chan evolve.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return runDoneMsg{}
		}
		return snapshotMsg(p)
	}
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case snapshotMsg:
		m.latest = evolve.Progress(msg)
		m.seen = true
		if m.latest.Done {
			m.done = true
			return m, tea.Quit
		}
		return m, waitForSnapshot(m.snapshots)
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	case RunErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m RunModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("evolving %s toward target %d", m.rule, m.target)))
	b.WriteByte('\n')

	if m.err != nil {
		b.WriteString(errStyle.Render("run failed: " + m.err.Error()))
		b.WriteByte('\n')
		return b.String()
	}

	if !m.seen {
		b.WriteString(m.spin.View() + " seeding generation zero...\n")
		return b.String()
	}

	pct := 0.0
	if m.latest.MaxBirths > 0 {
		pct = float64(m.latest.Birth) / float64(m.latest.MaxBirths)
	}
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteByte('\n')
	b.WriteString(statStyle.Render(fmt.Sprintf("birth %d/%d   best %d   mean %.1f",
		m.latest.Birth, m.latest.MaxBirths, m.latest.Best, m.latest.Mean)))
	b.WriteString("\n\n")

	champion := RenderGrid(m.latest.Champion, m.multistate)
	if champion != "" {
		panels := lipgloss.JoinHorizontal(lipgloss.Top,
			labelPanel("champion", champion),
			"   ",
			labelPanel("target", m.targetGrid))
		b.WriteString(panels)
		b.WriteByte('\n')
	}

	if m.done {
		b.WriteString(statStyle.Render("run complete"))
	} else {
		b.WriteString(statStyle.Render("press q to stop"))
	}
	b.WriteByte('\n')
	return b.String()
}

func labelPanel(label, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, statStyle.Render(label), body)
}
