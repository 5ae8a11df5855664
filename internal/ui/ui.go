package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/lmx/internal/dashboard"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/services"
)

const maxBarWidth = 60

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	client  services.MigrationClient
	logger  *log.Logger
	state   dashboard.State
	closed  bool
	width   int
	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model polling client. A nil logger discards output.
func NewModel(ctx context.Context, client services.MigrationClient, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Model{
		ctx:     ctx,
		client:  client,
		logger:  logger,
		state:   dashboard.NewState(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.info)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// State returns the current dashboard state.
func (m *Model) State() dashboard.State { return m.state }

// Init starts the poll ticker. The first fetch happens after one interval.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgTick:
			return m, tea.Batch(m.fetchStatus(), m.tick())
		case MsgStatusFetched:
			res := msg.data.(statusResult)
			if res.err != nil {
				m.logger.Warn("status poll failed", "error", res.err)
			} else {
				m.logger.Debug("status polled", "state", res.status.State, "progress", res.status.Progress)
			}
			m.state = m.state.ApplyPoll(res.status, res.err)
		case MsgActionDone:
			res := msg.data.(actionResult)
			if res.err != nil {
				m.logger.Warn("control request failed", "action", res.control, "error", res.err)
			}
			m.state = m.state.ApplyAction(res.control, res.err)
		}
	}

	return m, nil
}

// View renders the dashboard from the projected state.
func (m *Model) View() string {
	v := dashboard.Project(m.state)

	var b strings.Builder
	b.WriteString(styles.title.Render("LiveMigrate Dashboard"))
	b.WriteString("\n")
	b.WriteString(m.renderHeader(v))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(v.BarFraction()))
	b.WriteString("\n\n")
	b.WriteString(renderTiles(v))
	b.WriteString("\n")

	if v.HasControl() {
		b.WriteString("\n")
		b.WriteString(styles.button.Render(v.Button))
		b.WriteString("\n")
	}

	if v.HasError() {
		b.WriteString("\n")
		b.WriteString(styles.banner.Render(v.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.contextual(v.Control)))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	available := m.state.Control()

	switch {
	case key.Matches(msg, m.keys.quit):
		m.closed = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.activate):
		return m, m.dispatch(available)
	}

	for _, c := range []models.Control{models.ControlStart, models.ControlPause, models.ControlResume} {
		if b, _ := m.keys.binding(c); key.Matches(msg, b) && c == available {
			return m, m.dispatch(c)
		}
	}
	return m, nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(dashboard.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.Status(m.ctx)
		return statusFetchedMsg(status, err)
	}
}

func (m *Model) dispatch(c models.Control) tea.Cmd {
	if c == models.ControlNone {
		return nil
	}
	m.logger.Info("sending control request", "action", c)
	return func() tea.Msg {
		return actionDoneMsg(c, m.client.Act(m.ctx, c))
	}
}

func (m *Model) renderHeader(v dashboard.View) string {
	label := styles.Tone(v.Tone).Render(v.State)

	var icon string
	switch v.Icon {
	case dashboard.IconSpinner:
		icon = m.spinner.View()
	case dashboard.IconCheck:
		icon = styles.ok.Render("✓")
	case dashboard.IconAlert:
		icon = styles.err.Render("!")
	case dashboard.IconPause:
		icon = styles.warn.Render("‖")
	}

	if icon == "" {
		return fmt.Sprintf("Migration Status  %s", label)
	}
	return fmt.Sprintf("Migration Status  %s %s", icon, label)
}

func renderTiles(v dashboard.View) string {
	tile := func(name, value string) string {
		return styles.tile.Render(styles.help.Render(name) + "\n" + value)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Records Processed", v.Processed),
		tile("Progress", v.Progress),
		tile("Speed", v.Speed),
		tile("Time Remaining", v.Remaining),
	)
}
