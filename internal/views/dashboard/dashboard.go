// Package dashboard provides the counters, charts and ranked tables of
// the SIEM overview screen.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/theme"
)

// Source is the part of the backend API the dashboard reads.
type Source interface {
	GetSummary(ctx context.Context) (*client.Summary, error)
	GetTimeline(ctx context.Context) (client.Counts, error)
	GetEventsByType(ctx context.Context) (client.Counts, error)
	GetEventsBySeverity(ctx context.Context) (client.Counts, error)
}

// Part names one of the four fetches of a refresh cycle.
type Part int

const (
	PartSummary Part = iota
	PartTimeline
	PartTypes
	PartSeverity
	partCount
)

func (p Part) String() string {
	switch p {
	case PartSummary:
		return "summary"
	case PartTimeline:
		return "timeline"
	case PartTypes:
		return "by-type"
	case PartSeverity:
		return "by-severity"
	default:
		return "unknown"
	}
}

// LoadedMsg carries one fetch result of a refresh cycle.
type LoadedMsg struct {
	Cycle   int
	Part    Part
	Summary *client.Summary
	Counts  client.Counts
	Err     error
}

// Status is the connectivity indicator.
type Status int

const (
	StatusConnecting Status = iota
	StatusConnected
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusDisconnected:
		return "Disconnected"
	default:
		return "Connecting..."
	}
}

// Model holds the dashboard state.
type Model struct {
	Width int

	src     Source
	palette theme.Palette
	clock   clock.Clock
	log     *zap.Logger
	refresh key.Binding
	spinner spinner.Model

	cycle   int
	cancel  context.CancelFunc
	pending int
	loading bool

	status      Status
	err         error
	lastUpdated time.Time

	summary  client.Summary
	timeline Chart
	types    Chart
	severity Chart
}

// New creates a dashboard with placeholder charts. Nothing is fetched until
// Refresh is called.
func New(src Source, palette theme.Palette, clk clock.Clock, log *zap.Logger) Model {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{
		src:     src,
		palette: palette,
		clock:   clk,
		log:     log,
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		spinner:  sp,
		timeline: EmptyTimeline(),
		types:    EmptyTypeChart(palette),
		severity: EmptySeverityChart(palette),
	}
}

// Refresh starts a new fetch cycle. The four requests run concurrently and
// each updates its widget as it lands. Any cycle still in flight is
// cancelled.
func (m *Model) Refresh() tea.Cmd {
	m.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	m.cycle++
	m.cancel = cancel
	m.pending = int(partCount)
	m.loading = true

	cycle, src := m.cycle, m.src
	m.log.Debug("dashboard refresh", zap.Int("cycle", cycle))

	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			s, err := src.GetSummary(ctx)
			return LoadedMsg{Cycle: cycle, Part: PartSummary, Summary: s, Err: err}
		},
		countsCmd(ctx, cycle, PartTimeline, src.GetTimeline),
		countsCmd(ctx, cycle, PartTypes, src.GetEventsByType),
		countsCmd(ctx, cycle, PartSeverity, src.GetEventsBySeverity),
	)
}

func countsCmd(ctx context.Context, cycle int, part Part, fetch func(context.Context) (client.Counts, error)) tea.Cmd {
	return func() tea.Msg {
		c, err := fetch(ctx)
		return LoadedMsg{Cycle: cycle, Part: part, Counts: c, Err: err}
	}
}

// Stop cancels the cycle in flight, if any.
func (m *Model) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.loading = false
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return m.applyLoaded(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.refresh) {
			cmd := m.Refresh()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) applyLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	if msg.Cycle != m.cycle || !m.loading {
		return m, nil
	}

	if msg.Err != nil {
		m.Stop()
		m.status = StatusDisconnected
		m.err = msg.Err
		m.log.Warn("dashboard fetch failed", zap.Stringer("part", msg.Part), zap.Error(msg.Err))
		if errors.Is(msg.Err, client.ErrUnauthorized) {
			err := msg.Err
			return m, func() tea.Msg { return session.ExpiredMsg{Err: err} }
		}
		return m, nil
	}

	switch msg.Part {
	case PartSummary:
		if msg.Summary != nil {
			m.summary = *msg.Summary
		}
	case PartTimeline:
		m.timeline = TimelineChart(msg.Counts)
	case PartTypes:
		m.types = TypeChart(msg.Counts, m.palette)
	case PartSeverity:
		m.severity = SeverityChart(msg.Counts, m.palette)
	}

	m.pending--
	if m.pending == 0 {
		m.Stop()
		m.status = StatusConnected
		m.err = nil
		m.lastUpdated = m.clock.Now()
	}
	return m, nil
}

// Status returns the connectivity indicator.
func (m Model) Status() Status { return m.status }

// Loading reports whether a cycle is in flight.
func (m Model) Loading() bool { return m.loading }

// LastUpdated is the time the last complete cycle finished.
func (m Model) LastUpdated() time.Time { return m.lastUpdated }

func (m Model) Timeline() Chart { return m.timeline }
func (m Model) Types() Chart    { return m.types }
func (m Model) Severity() Chart { return m.severity }

// Counters returns active agents, events today, critical events and unique
// hosts. Missing values are zero.
func (m Model) Counters() (agents, today, critical, hosts int) {
	s := m.summary
	return len(s.ActiveAgents), s.EventsToday, s.CriticalEvents, s.UniqueHosts
}

// Tables returns the four ranked tables in display order.
func (m Model) Tables() []Table {
	now := m.clock.Now()
	auth := AuthTable(m.summary.AuthLogs)
	auth.Badge = fmt.Sprintf("%d today", m.summary.EventsToday)
	return []Table{
		AgentsTable(m.summary.ActiveAgents, now),
		auth,
		UsersTable(m.summary.TopUsers, now),
		ProcessesTable(m.summary.TopProcesses),
	}
}

// View renders the full dashboard.
func (m Model) View() string {
	width := m.Width
	if width < 60 {
		width = 60
	}

	sections := []string{
		m.renderHeader(width),
		m.renderCounters(width),
		renderTimeline(m.timeline, width-4),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderBars(m.types, width/2-2),
			renderBars(m.severity, width/2-2)),
	}

	tables := m.Tables()
	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderTable(tables[0], m.palette, -1),
			renderTable(tables[1], m.palette, 3)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderTable(tables[2], m.palette, -1),
			renderTable(tables[3], m.palette, -1)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	var badge string
	switch m.status {
	case StatusConnected:
		badge = theme.StyleSuccess.Render("● " + m.status.String())
	case StatusDisconnected:
		badge = theme.StyleError.Render("○ " + m.status.String())
	default:
		badge = theme.StyleDimmed.Render("○ " + m.status.String())
	}

	right := ""
	if m.loading {
		right = m.spinner.View() + " loading"
	} else if !m.lastUpdated.IsZero() {
		right = "Last updated: " + m.lastUpdated.Local().Format("15:04:05")
	}

	left := theme.StyleHeader.Render("Security Dashboard") + "  " + badge
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	line := left + strings.Repeat(" ", gap) + theme.StyleDimmed.Render(right)
	if m.status == StatusDisconnected && m.err != nil {
		line += "\n" + theme.StyleError.Render(theme.Truncate(m.err.Error(), width-2))
	}
	return line
}

func (m Model) renderCounters(width int) string {
	agents, today, critical, hosts := m.Counters()
	stat := lipgloss.NewStyle().Padding(0, 1)
	stats := []string{
		stat.Foreground(theme.ColorHealthy).Render(fmt.Sprintf("Active Agents: %d", agents)),
		stat.Foreground(theme.ColorAccent).Render(fmt.Sprintf("Events Today: %d", today)),
		stat.Foreground(m.palette.SeverityColor(string(client.SeverityCritical))).Render(fmt.Sprintf("Critical: %d", critical)),
		stat.Foreground(theme.ColorBright).Render(fmt.Sprintf("Unique Hosts: %d", hosts)),
	}
	content := strings.Join(stats, lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | "))

	return lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
