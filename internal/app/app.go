package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/config"
	"github.com/siem-console/tui/internal/logger"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/theme"
	"github.com/siem-console/tui/internal/views/dashboard"
	"github.com/siem-console/tui/internal/views/debug"
	"github.com/siem-console/tui/internal/views/events"
	"github.com/siem-console/tui/internal/views/login"
	"github.com/siem-console/tui/internal/views/status"
)

// Screen identifies the active top-level view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenEvents
)

func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Dashboard"
	case ScreenEvents:
		return "Events"
	default:
		return "Login"
	}
}

// Backend is the API surface the console reads.
type Backend interface {
	dashboard.Source
	events.Fetcher
	GetHealth(ctx context.Context) (*client.Health, error)
}

// Options wires the root model.
type Options struct {
	Backend Backend
	Probe   login.Prober
	Store   *session.Store
	Config  *config.Config
	Clock   clock.Clock
	Log     *zap.Logger
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
}

type navigateMsg struct {
	screen Screen
}

type healthMsg struct {
	health *client.Health
	err    error
}

// Model is the root Bubble Tea model.
type Model struct {
	opts    Options
	keys    KeyMap
	log     *zap.Logger
	palette theme.Palette

	width  int
	height int

	screen    Screen
	showDebug bool

	login     login.Model
	dashboard dashboard.Model
	events    events.Model
	statusBar status.Model
	debug     debug.Model
}

// New creates the root model. The first screen is decided in Init.
func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Store == nil {
		opts.Store = session.NewStore()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	cfg := opts.Config
	palette := theme.NewPalette(cfg.Palette.Types, cfg.Palette.Severity, cfg.Palette.Unknown, cfg.Palette.Placeholder)

	m := Model{
		opts:      opts,
		keys:      DefaultKeyMap(),
		log:       logger.Component(opts.Log, "app"),
		palette:   palette,
		statusBar: status.New(),
		debug:     debug.New(opts.Clock),
	}
	m.login = m.newLogin()
	m.dashboard = m.newDashboard()
	m.events = m.newEvents()
	m.statusBar.Username = opts.Store.Username()
	return m
}

func (m Model) newLogin() login.Model {
	l := login.New(m.opts.Probe, m.opts.Store, m.opts.Config.UI.RedirectDelay, logger.Component(m.opts.Log, "login"))
	l.SetWidth(m.width)
	return l
}

func (m Model) newDashboard() dashboard.Model {
	d := dashboard.New(m.opts.Backend, m.palette, m.opts.Clock, logger.Component(m.opts.Log, "dashboard"))
	d.Width = m.width
	return d
}

func (m Model) newEvents() events.Model {
	cfg := m.opts.Config
	e := events.New(m.opts.Backend, m.opts.Store, events.Options{
		PageSize:      cfg.Events.PageSize,
		FetchLimit:    cfg.Events.FetchLimit,
		ExportDir:     cfg.Export.Dir,
		ToastDuration: cfg.UI.ToastDuration,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		Palette:       m.palette,
		Clock:         m.opts.Clock,
		Clipboard:     m.opts.Clipboard,
		Log:           logger.Component(m.opts.Log, "events"),
	})
	e.Width = m.width
	e.Height = m.height
	return e
}

// endSession drops the credential and every view holding data fetched
// under it, then returns to login.
func (m *Model) endSession() tea.Cmd {
	m.opts.Store.Clear()
	m.dashboard.Stop()
	m.events.Stop()
	m.dashboard = m.newDashboard()
	m.events = m.newEvents()
	m.statusBar.Username = ""
	m.statusBar.Connection = status.Connecting
	m.statusBar.SetServices(nil)
	return m.navigate(ScreenLogin)
}

// Init opens the dashboard; navigation redirects to login when no
// credential is stored.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return navigateMsg{screen: ScreenDashboard} }
}

// Screen returns the active screen.
func (m Model) Screen() Screen { return m.screen }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.dashboard.Width = msg.Width
		m.events.Width = msg.Width
		m.events.Height = msg.Height
		m.login.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case navigateMsg:
		cmd := m.navigate(msg.screen)
		return m, cmd

	case session.ExpiredMsg:
		m.debug.Record(debug.KindAuth, "session", "expired: "+errText(msg.Err))
		m.log.Info("session expired, redirecting to login", zap.Error(msg.Err))
		cmd := m.endSession()
		return m, cmd

	case login.AuthenticatedMsg:
		m.statusBar.Username = msg.Username
		m.debug.Record(debug.KindAuth, "login", "signed in as "+msg.Username)
		cmd := m.navigate(ScreenDashboard)
		return m, cmd

	case healthMsg:
		if msg.err != nil {
			m.debug.Record(debug.KindErr, "health", msg.err.Error())
			return m, nil
		}
		m.statusBar.SetServices(msg.health.Services)
		m.debug.Record(debug.KindHealth, "health", fmt.Sprintf("backend %s, %d services", msg.health.Status, len(msg.health.Services)))
		return m, nil

	case dashboard.LoadedMsg:
		wasLoading := m.dashboard.Loading()
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		m.syncConnection()
		if wasLoading && !m.dashboard.Loading() {
			if msg.Err != nil {
				m.debug.Record(debug.KindErr, "dashboard", fmt.Sprintf("%s: %v", msg.Part, msg.Err))
			} else {
				m.debug.Record(debug.KindLoad, "dashboard", "refreshed")
			}
		}
		return m, cmd

	case events.LoadedMsg:
		wasLoading := m.events.Loading()
		var cmd tea.Cmd
		m.events, cmd = m.events.Update(msg)
		if wasLoading && !m.events.Loading() {
			if msg.Err != nil {
				m.debug.Record(debug.KindErr, "events", msg.Err.Error())
			} else {
				m.debug.Record(debug.KindLoad, "events", fmt.Sprintf("%d cached", m.events.Registry().Len()))
			}
		}
		return m, cmd

	case spinner.TickMsg:
		var c1, c2, c3 tea.Cmd
		m.login, c1 = m.login.Update(msg)
		m.dashboard, c2 = m.dashboard.Update(msg)
		m.events, c3 = m.events.Update(msg)
		return m, tea.Batch(c1, c2, c3)
	}

	// Everything else belongs to the screen that issued it; toast timers
	// and export results always go to the browser.
	var cmd tea.Cmd
	if m.screen == ScreenLogin {
		m.login, cmd = m.login.Update(msg)
	} else {
		m.events, cmd = m.events.Update(msg)
	}
	return m, cmd
}

func (m *Model) syncConnection() {
	switch m.dashboard.Status() {
	case dashboard.StatusConnected:
		m.statusBar.Connection = status.Connected
	case dashboard.StatusDisconnected:
		m.statusBar.Connection = status.Disconnected
	default:
		m.statusBar.Connection = status.Connecting
	}
}

// navigate switches screens. Protected screens redirect to login before
// any request is made when no credential is stored.
func (m *Model) navigate(to Screen) tea.Cmd {
	if to != ScreenLogin {
		if _, err := m.opts.Store.Require(); err != nil {
			m.log.Debug("no credential, redirecting", zap.Stringer("requested", to))
			to = ScreenLogin
		}
	}

	if to != ScreenDashboard {
		m.dashboard.Stop()
	}
	if to != ScreenEvents {
		m.events.Stop()
	}

	from := m.screen
	m.screen = to
	m.statusBar.Screen = to.String()
	m.showDebug = false
	if from != to {
		m.debug.Record(debug.KindNav, "app", from.String()+" → "+to.String())
	}

	switch to {
	case ScreenDashboard:
		refresh := m.dashboard.Refresh()
		return tea.Batch(refresh, m.checkHealth())
	case ScreenEvents:
		return m.events.Load()
	default:
		m.login = m.newLogin()
		return m.login.Init()
	}
}

func (m Model) checkHealth() tea.Cmd {
	if m.opts.Backend == nil {
		return nil
	}
	backend := m.opts.Backend
	return func() tea.Msg {
		h, err := backend.GetHealth(context.Background())
		return healthMsg{health: h, err: err}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.shutdown()
		return m, tea.Quit
	}

	if m.screen == ScreenLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	if m.showDebug {
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Debug):
			m.showDebug = false
		case key.Matches(msg, m.keys.Up):
			m.debug.Scroll(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.Scroll(-1)
		case key.Matches(msg, m.keys.ErrorsOnly):
			m.debug.ToggleErrors()
		}
		return m, nil
	}

	// Filter inputs receive every printable key.
	if m.screen == ScreenEvents && m.events.Capturing() {
		var cmd tea.Cmd
		m.events, cmd = m.events.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dashboard):
		cmd := m.navigate(ScreenDashboard)
		return m, cmd

	case key.Matches(msg, m.keys.Events):
		cmd := m.navigate(ScreenEvents)
		return m, cmd

	case key.Matches(msg, m.keys.Debug):
		m.showDebug = true
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		m.debug.Record(debug.KindAuth, "session", "signed out")
		m.log.Info("signed out")
		cmd := m.endSession()
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ScreenEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return m, cmd
}

func (m *Model) shutdown() {
	m.dashboard.Stop()
	m.events.Stop()
	m.log.Info("shutting down")
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.screen == ScreenLogin {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.login.View())
	}

	var body, help string
	switch m.screen {
	case ScreenEvents:
		body = m.events.View()
		help = "  " + m.events.Help() + "  1:dashboard  D:debug  L:logout  q:quit"
	default:
		body = m.dashboard.View()
		help = "  2:events  r:refresh  D:debug  L:logout  q:quit"
	}
	if m.showDebug {
		body = m.debug.View(m.width, m.height-4)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		body,
		theme.StyleDimmed.Render(help),
	)
}

func errText(err error) string {
	if err == nil {
		return "no detail"
	}
	return err.Error()
}

// ErrNoBackend is returned by Validate when the model has nothing to talk to.
var ErrNoBackend = errors.New("app: backend and login probe are required")

// Validate reports wiring errors before the program starts.
func (o Options) Validate() error {
	if o.Backend == nil || o.Probe == nil {
		return ErrNoBackend
	}
	return nil
}
