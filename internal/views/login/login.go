// Package login provides the sign-in screen. It probes the backend with
// the entered credentials and stores them in the session on success.
package login

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/theme"
)

const (
	MsgSuccess = "✓ Authentication successful! Redirecting..."
	MsgFailure = "✗ Authentication failed. Please check your credentials."

	buttonIdle = "Sign In"
	buttonBusy = "Authenticating..."

	shakeFPS    = 60
	shakeOffset = 6.0
	alertIndent = 4
)

// Prober checks a token against the backend. A nil error means the
// credentials were accepted.
type Prober func(ctx context.Context, token string) error

// ProbeSummary returns a Prober that issues one GET /api/dashboard/summary
// with the candidate token.
func ProbeSummary(http *client.HTTPClient) Prober {
	return func(ctx context.Context, token string) error {
		_, err := http.WithCredentials(client.StaticToken(token)).GetSummary(ctx)
		return err
	}
}

// ResultMsg carries the outcome of a login probe.
type ResultMsg struct {
	Cred session.Credential
	Err  error
}

// AuthenticatedMsg is emitted after the post-login delay. The app switches
// to the dashboard on it.
type AuthenticatedMsg struct {
	Username string
}

type shakeFrameMsg struct {
	gen int
}

type alertKind int

const (
	alertNone alertKind = iota
	alertSuccess
	alertFailure
)

// KeyMap holds the login form bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

// DefaultKeyMap returns the default login bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
	}
}

// Model is the login screen.
type Model struct {
	probe Prober
	store *session.Store
	log   *zap.Logger
	keys  KeyMap

	username textinput.Model
	password textinput.Model
	spinner  spinner.Model

	redirectDelay time.Duration
	submitting    bool
	alert         alertKind

	spring   harmonica.Spring
	shakeX   float64
	shakeV   float64
	shakeGen int
	shaking  bool

	width int
}

// New creates the login screen. No credentials are prefilled.
func New(probe Prober, store *session.Store, redirectDelay time.Duration, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = "Username: "
	user.CharLimit = 128
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "Password: "
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		probe:         probe,
		store:         store,
		log:           log,
		keys:          DefaultKeyMap(),
		username:      user,
		password:      pass,
		spinner:       sp,
		redirectDelay: redirectDelay,
		spring:        harmonica.NewSpring(harmonica.FPS(shakeFPS), 18.0, 0.15),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetWidth updates the available rendering width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// Submitting reports whether a probe is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// Shaking reports whether the failure animation is running.
func (m Model) Shaking() bool {
	return m.shaking
}

// FocusedUsername reports whether the username field has focus.
func (m Model) FocusedUsername() bool {
	return m.username.Focused()
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		return m.handleResult(msg)

	case shakeFrameMsg:
		if msg.gen != m.shakeGen || !m.shaking {
			return m, nil
		}
		m.shakeX, m.shakeV = m.spring.Update(m.shakeX, m.shakeV, 0)
		if math.Abs(m.shakeX) < 0.05 && math.Abs(m.shakeV) < 0.05 {
			m.shakeX, m.shakeV = 0, 0
			m.shaking = false
			return m, nil
		}
		return m, m.nextShakeFrame()

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		var cmd tea.Cmd
		if m.username.Focused() {
			m.username.Blur()
			cmd = m.password.Focus()
		} else {
			m.password.Blur()
			cmd = m.username.Focus()
		}
		return m, cmd
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var c1, c2 tea.Cmd
	m.username, c1 = m.username.Update(msg)
	m.password, c2 = m.password.Update(msg)
	return m, tea.Batch(c1, c2)
}

func (m Model) submit() (Model, tea.Cmd) {
	cred := session.NewCredential(m.username.Value(), m.password.Value())
	m.submitting = true
	m.log.Info("login attempt", zap.String("username", cred.Username))

	probe := m.probe
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		err := probe(context.Background(), cred.Token)
		return ResultMsg{Cred: cred, Err: err}
	})
}

func (m Model) handleResult(msg ResultMsg) (Model, tea.Cmd) {
	m.submitting = false

	if msg.Err != nil {
		m.log.Warn("login failed", zap.String("username", msg.Cred.Username), zap.Error(msg.Err))
		m.alert = alertFailure
		m.password.Blur()
		focus := m.username.Focus()
		shake := m.startShake()
		return m, tea.Batch(focus, shake)
	}

	m.store.Set(msg.Cred)
	m.alert = alertSuccess
	m.log.Info("login succeeded", zap.String("username", msg.Cred.Username))

	username := msg.Cred.Username
	return m, tea.Tick(m.redirectDelay, func(time.Time) tea.Msg {
		return AuthenticatedMsg{Username: username}
	})
}

func (m *Model) startShake() tea.Cmd {
	m.shakeGen++
	m.shaking = true
	m.shakeX = shakeOffset
	m.shakeV = 0
	return m.nextShakeFrame()
}

func (m Model) nextShakeFrame() tea.Cmd {
	gen := m.shakeGen
	return tea.Tick(time.Second/shakeFPS, func(time.Time) tea.Msg {
		return shakeFrameMsg{gen: gen}
	})
}

// View renders the login form.
func (m Model) View() string {
	title := theme.StyleHeader.Render("SIEM Console")
	subtitle := theme.StyleDimmed.Render("Security Information & Event Management")

	button := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBright).
		Background(theme.ColorAccent).
		Padding(0, 2)
	var btn string
	if m.submitting {
		btn = button.Background(theme.ColorDimmed).Render(m.spinner.View() + " " + buttonBusy)
	} else {
		btn = button.Render(buttonIdle)
	}

	lines := []string{
		title,
		subtitle,
		"",
		m.username.View(),
		m.password.View(),
		"",
		btn,
	}
	if a := m.renderAlert(); a != "" {
		lines = append(lines, "", a)
	}
	lines = append(lines, "", theme.StyleDimmed.Render("tab: next field  enter: sign in  ctrl+c: quit"))

	form := theme.StyleBorder.Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, form)
	}
	return form
}

func (m Model) renderAlert() string {
	indent := strings.Repeat(" ", max(0, alertIndent+int(math.Round(m.shakeX))))
	switch m.alert {
	case alertSuccess:
		return indent + theme.StyleSuccess.Render(MsgSuccess)
	case alertFailure:
		return indent + theme.StyleError.Render(MsgFailure)
	}
	return ""
}
