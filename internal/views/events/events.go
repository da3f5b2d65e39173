// Package events provides the event browser screen: filter bar, paginated
// list, expandable detail flyout, export and copy-ID actions.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/siem-console/tui/internal/client"
	evt "github.com/siem-console/tui/internal/events"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/theme"
	"github.com/siem-console/tui/internal/timeago"
	"github.com/siem-console/tui/internal/views/detail"
)

// Toast copy.
const (
	ToastExported   = "Event exported successfully!"
	ToastCopied     = "Event ID copied to clipboard!"
	ToastCopyFailed = "Failed to copy Event ID"
)

// Fetcher is the part of the backend API the browser reads.
type Fetcher interface {
	GetEvents(ctx context.Context, skip, limit int) (*client.EventsResponse, error)
}

// LoadedMsg carries the result of one events fetch.
type LoadedMsg struct {
	Token  evt.Token
	Events []client.SecurityEvent
	Err    error
}

// ExportedMsg reports the outcome of an export.
type ExportedMsg struct {
	Path string
	Err  error
}

// CopiedMsg reports the outcome of a clipboard write.
type CopiedMsg struct {
	ID  string
	Err error
}

type toastExpiredMsg struct {
	id int
}

type toast struct {
	id   int
	text string
	ok   bool
}

type focus int

const (
	focusList focus = iota
	focusType
	focusHost
)

// severityOptions is the severity selector cycle; "" means all.
var severityOptions = func() []string {
	opts := []string{""}
	for _, s := range client.Severities {
		opts = append(opts, string(s))
	}
	return opts
}()

// Options configures the browser.
type Options struct {
	PageSize      int
	FetchLimit    int
	ExportDir     string
	ToastDuration time.Duration
	MarkdownStyle string
	Palette       theme.Palette
	Clock         clock.Clock
	// Clipboard writes text to the system clipboard. Defaults to
	// atotto/clipboard.
	Clipboard func(string) error
	Log       *zap.Logger
}

// Model is the event browser.
type Model struct {
	Width  int
	Height int

	src   Fetcher
	store *session.Store
	opts  Options
	keys  KeyMap

	registry evt.Registry
	loader   evt.Loader
	loading  bool
	err      error
	cursor   int

	typeInput textinput.Model
	hostInput textinput.Model
	sevIdx    int
	focus     focus

	spinner spinner.Model
	toast   *toast
	toastID int
}

// New creates the browser. Call Load to fetch.
func New(src Fetcher, store *session.Store, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = evt.DefaultPageSize
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = evt.FetchLimit
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 3 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "Type: "
	ti.Placeholder = "any"
	ti.CharLimit = 64
	ti.Width = 16

	hi := textinput.New()
	hi.Prompt = "Host: "
	hi.Placeholder = "hostname or source"
	hi.CharLimit = 128
	hi.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		src:       src,
		store:     store,
		opts:      opts,
		keys:      DefaultKeyMap(),
		registry:  evt.NewRegistry(opts.PageSize),
		typeInput: ti,
		hostInput: hi,
		spinner:   sp,
	}
}

// Load fetches the event window. A load already in flight is cancelled and
// its response dropped. Without a credential it asks the app to show the
// login screen instead of fetching.
func (m *Model) Load() tea.Cmd {
	if _, err := m.store.Require(); err != nil {
		return func() tea.Msg { return session.ExpiredMsg{Err: err} }
	}

	token, ctx := m.loader.Begin(context.Background())
	m.loading = true
	m.err = nil

	src, limit, log := m.src, m.opts.FetchLimit, m.opts.Log
	log.Debug("events load", zap.Uint64("token", uint64(token)))
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		resp, err := src.GetEvents(ctx, 0, limit)
		if err != nil {
			return LoadedMsg{Token: token, Err: err}
		}
		return LoadedMsg{Token: token, Events: resp.Events}
	})
}

// Stop cancels any load in flight.
func (m *Model) Stop() {
	m.loader.Cancel()
	m.loading = false
}

// Registry exposes the view-model for inspection.
func (m Model) Registry() evt.Registry { return m.registry }

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Err is the last load error, if the error panel is showing.
func (m Model) Err() error { return m.err }

// Cursor is the highlighted row on the current page.
func (m Model) Cursor() int { return m.cursor }

// Toast returns the visible notification text, if any.
func (m Model) Toast() (string, bool) {
	if m.toast == nil {
		return "", false
	}
	return m.toast.text, m.toast.ok
}

// Help renders the footer key hints.
func (m Model) Help() string {
	bindings := m.keys.ShortHelp()
	if m.focus != focusList {
		bindings = []key.Binding{m.keys.NextField, m.keys.Submit, m.keys.Escape}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// Capturing reports whether a filter input has focus, so the app should
// not treat letter keys as global shortcuts.
func (m Model) Capturing() bool {
	return m.focus != focusList
}

// Update handles messages for the browser.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return m.applyLoaded(msg)

	case ExportedMsg:
		if msg.Err != nil {
			m.opts.Log.Warn("export failed", zap.Error(msg.Err))
			cmd := m.showToast("Export failed: "+msg.Err.Error(), false)
			return m, cmd
		}
		m.opts.Log.Info("event exported", zap.String("path", msg.Path))
		cmd := m.showToast(ToastExported, true)
		return m, cmd

	case CopiedMsg:
		if msg.Err != nil {
			m.opts.Log.Warn("clipboard write failed", zap.Error(msg.Err))
			cmd := m.showToast(ToastCopyFailed, false)
			return m, cmd
		}
		cmd := m.showToast(ToastCopied, true)
		return m, cmd

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.focus != focusList {
			return m.handleInputKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) applyLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	if !m.loader.Finish(msg.Token) {
		return m, nil
	}
	m.loading = false

	if msg.Err != nil {
		if errors.Is(msg.Err, client.ErrUnauthorized) {
			err := msg.Err
			return m, func() tea.Msg { return session.ExpiredMsg{Err: err} }
		}
		m.opts.Log.Warn("events load failed", zap.Error(msg.Err))
		m.err = msg.Err
		return m, nil
	}

	m.err = nil
	m.registry.Replace(msg.Events)
	m.cursor = 0
	m.opts.Log.Debug("events loaded", zap.Int("count", len(msg.Events)), zap.Int("matching", m.registry.Total()))
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Submit):
		m.blurInputs()
		m.focus = focusList
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m.cycleFocus()
	}

	var cmd tea.Cmd
	before := m.typeInput.Value() + "\x00" + m.hostInput.Value()
	if m.focus == focusType {
		m.typeInput, cmd = m.typeInput.Update(msg)
	} else {
		m.hostInput, cmd = m.hostInput.Update(msg)
	}
	if m.typeInput.Value()+"\x00"+m.hostInput.Value() != before {
		m.applyFilters()
	}
	return m, cmd
}

func (m Model) cycleFocus() (Model, tea.Cmd) {
	m.blurInputs()
	var cmd tea.Cmd
	if m.focus == focusType {
		m.focus = focusHost
		cmd = m.hostInput.Focus()
	} else {
		m.focus = focusType
		cmd = m.typeInput.Focus()
	}
	return m, cmd
}

func (m *Model) blurInputs() {
	m.typeInput.Blur()
	m.hostInput.Blur()
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	rows := len(m.registry.Visible())

	switch {
	case key.Matches(msg, m.keys.Reload):
		cmd := m.Load()
		return m, cmd

	case key.Matches(msg, m.keys.TypeFilter):
		m.focus = focusType
		cmd := m.typeInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.HostFilter):
		m.focus = focusHost
		cmd := m.hostInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Severity):
		m.sevIdx = (m.sevIdx + 1) % len(severityOptions)
		m.applyFilters()

	case key.Matches(msg, m.keys.Clear):
		m.ClearFilters()

	case key.Matches(msg, m.keys.Down):
		if rows > 0 {
			m.cursor = min(m.cursor+1, rows-1)
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.registry.NextPage() {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.registry.PrevPage() {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Toggle):
		if rows > 0 {
			if err := m.registry.Toggle(m.cursor); err != nil {
				m.opts.Log.Debug("toggle", zap.Error(err))
			}
		}

	case key.Matches(msg, m.keys.Export):
		ev, ok := m.target()
		if !ok {
			return m, nil
		}
		dir, now := m.opts.ExportDir, m.opts.Clock.Now()
		return m, func() tea.Msg {
			path, err := evt.Export(dir, ev, now)
			return ExportedMsg{Path: path, Err: err}
		}

	case key.Matches(msg, m.keys.Copy):
		ev, ok := m.target()
		if !ok || ev.ID == "" {
			return m, nil
		}
		write, id := m.opts.Clipboard, ev.ID
		return m, func() tea.Msg {
			return CopiedMsg{ID: id, Err: write(id)}
		}
	}
	return m, nil
}

// target is the row export and copy act on: the expanded row, or the
// highlighted one when nothing is expanded.
func (m Model) target() (client.SecurityEvent, bool) {
	i := m.registry.Expanded()
	if i < 0 {
		i = m.cursor
	}
	ev, err := m.registry.Event(i)
	if err != nil {
		return client.SecurityEvent{}, false
	}
	return ev, true
}

// SetFilters sets the three filter inputs and reapplies them.
func (m *Model) SetFilters(eventType, severity, host string) {
	m.typeInput.SetValue(eventType)
	m.hostInput.SetValue(host)
	m.sevIdx = 0
	for i, s := range severityOptions {
		if strings.EqualFold(s, severity) {
			m.sevIdx = i
		}
	}
	m.applyFilters()
}

// ClearFilters empties every filter and reapplies.
func (m *Model) ClearFilters() {
	m.SetFilters("", "", "")
}

func (m *Model) applyFilters() {
	m.registry.SetCriteria(evt.NewCriteria(m.typeInput.Value(), severityOptions[m.sevIdx], m.hostInput.Value()))
	m.cursor = 0
}

func (m *Model) showToast(text string, ok bool) tea.Cmd {
	m.toastID++
	m.toast = &toast{id: m.toastID, text: text, ok: ok}
	id := m.toastID
	return tea.Tick(m.opts.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// View renders the browser.
func (m Model) View() string {
	width := max(m.Width, 80)

	sections := []string{
		theme.StyleHeader.Render("Security Events"),
		m.renderFilters(),
		"",
		m.renderBody(width),
	}
	if c, ok := m.registry.Pagination(); ok && !m.loading && m.err == nil {
		sections = append(sections, "", renderPagination(c))
	}
	if m.toast != nil {
		style := theme.StyleSuccess
		icon := "✓ "
		if !m.toast.ok {
			style = theme.StyleError
			icon = "✗ "
		}
		sections = append(sections, "", style.Render(icon+m.toast.text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderFilters() string {
	sev := severityOptions[m.sevIdx]
	if sev == "" {
		sev = "all"
	}
	sevStr := "Severity: " + lipgloss.NewStyle().Foreground(m.opts.Palette.SeverityColor(sev)).Render(sev)
	sep := theme.StyleDimmed.Render("  │  ")
	return m.typeInput.View() + sep + sevStr + sep + m.hostInput.View()
}

func (m Model) renderBody(width int) string {
	switch {
	case m.loading:
		return m.spinner.View() + " " + theme.StyleDimmed.Render("Loading security events...")

	case m.err != nil:
		body := lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleError.Bold(true).Render("⚠ Error loading events"),
			"Failed to load events: "+m.err.Error(),
			theme.StyleDimmed.Render("[r] Try Again"),
		)
		return theme.StyleBorder.BorderForeground(theme.ColorDanger).Padding(0, 1).Render(body)
	}

	rows := m.registry.Visible()
	if len(rows) == 0 {
		body := lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleHeader.Render("No security events found"),
			"The database is connected but no security events have been collected yet.",
			theme.StyleDimmed.Render("[r] Refresh  [x] Clear filters"),
			theme.StyleDimmed.Render("Start your SIEM agent or add test logs to see events here."),
		)
		return theme.StyleBorder.Padding(0, 1).Render(body)
	}

	now := m.opts.Clock.Now()
	expanded := m.registry.Expanded()
	var lines []string
	lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  %-12s %-10s %-20s %-24s %-12s", "Time", "Severity", "Type", "Host", "User")))
	for i, ev := range rows {
		lines = append(lines, m.renderRow(i, ev, now, i == expanded))
		if i == expanded {
			lines = append(lines, detail.New(ev, m.opts.Palette, m.opts.MarkdownStyle, width-4).View())
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderRow(i int, ev client.SecurityEvent, now time.Time, open bool) string {
	prefix := "  "
	if i == m.cursor {
		prefix = "> "
	}
	chevron := "▾"
	if open {
		chevron = "▴"
	}

	sev := ev.Severity
	if sev == "" {
		sev = "info"
	}
	host := orUnknown(ev.Hostname)
	if ev.Source != "" {
		host += " (" + ev.Source + ")"
	}

	sevCell := lipgloss.NewStyle().Width(10).Foreground(m.opts.Palette.SeverityColor(sev)).Render(theme.Capitalize(sev))
	line := fmt.Sprintf("%s%-12s %s %-20s %-24s %-12s %s",
		prefix,
		timeago.Format(ev.Timestamp, now),
		sevCell,
		theme.Truncate(orUnknown(ev.EventType), 20),
		theme.Truncate(host, 24),
		theme.Truncate(orNA(ev.User), 12),
		chevron,
	)
	if i == m.cursor {
		return theme.StyleSelected.Render(line)
	}
	return line
}

func renderPagination(c evt.Control) string {
	link := func(label string, enabled bool) string {
		if enabled {
			return theme.StyleHeader.Render(label)
		}
		return theme.StyleDimmed.Render(label)
	}

	parts := []string{link("‹", c.Prev.Enabled)}
	for _, it := range c.Items {
		switch {
		case it.Kind == evt.ItemEllipsis:
			parts = append(parts, theme.StyleDimmed.Render("…"))
		case it.Active:
			parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).Background(theme.ColorAccent).Render(fmt.Sprintf("[%d]", it.Page)))
		default:
			parts = append(parts, fmt.Sprintf("%d", it.Page))
		}
	}
	parts = append(parts, link("›", c.Next.Enabled))
	return strings.Join(parts, " ") + "   " + theme.StyleDimmed.Render(c.Summary)
}

func orUnknown(s string) string {
	if s == "" {
		return timeago.Fallback
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
