// Package detail renders the expanded event flyout shown under a row of
// the event browser.
package detail

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/theme"
)

const (
	labelWidth   = 12
	minWidth     = 48
	noRawLog     = "No raw log available"
	notAvailable = "N/A"
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// Model holds the state for the detail flyout.
type Model struct {
	Event   client.SecurityEvent
	Width   int
	Palette theme.Palette

	// Style is the glamour style for the raw log ("dark", "light",
	// "notty", ...).
	Style string
}

// New creates a detail model for the given event.
func New(ev client.SecurityEvent, palette theme.Palette, style string, width int) Model {
	return Model{Event: ev, Palette: palette, Style: style, Width: width}
}

// Fields returns the label/value pairs shown in the flyout, with "N/A" for
// missing values.
func Fields(ev client.SecurityEvent) [][2]string {
	return [][2]string{
		{"Event ID", orNA(ev.ID)},
		{"Source", orNA(ev.Source)},
		{"Process", orNA(ev.Process)},
		{"Command", orNA(ev.Command)},
		{"User", orNA(ev.User)},
		{"Hostname", orNA(ev.Hostname)},
	}
}

// View renders the detail panel.
func (m Model) View() string {
	width := max(m.Width, minWidth)
	var b strings.Builder

	b.WriteString(styleTitle.Render("Event Details") + "  " + m.Palette.SeverityBadge(m.Event.Severity) + "\n")
	b.WriteString(strings.Repeat("─", width-4) + "\n")
	for _, f := range Fields(m.Event) {
		b.WriteString(styleLabel.Render(f[0]+":") + styleValue.Render(theme.Truncate(f[1], width-labelWidth-4)) + "\n")
	}

	b.WriteString("\n" + styleTitle.Render("Raw Log:") + "\n")
	b.WriteString(RenderRawLog(m.Event.RawLog, m.Style, width-4))

	b.WriteString("\n" + styleFooter.Render("[e] export as JSON  [c] copy event ID  [enter] collapse"))

	return stylePanel.Width(width).Render(b.String())
}

// RenderRawLog formats the raw log as a fenced block through glamour. It
// falls back to the plain text if rendering fails.
func RenderRawLog(raw, style string, width int) string {
	if strings.TrimSpace(raw) == "" {
		return theme.StyleDimmed.Render(noRawLog)
	}
	if style == "" {
		style = "dark"
	}
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	r, err := rendererFor(style, max(width, 20))
	if err != nil {
		return raw
	}
	out, err := r.Render("```\n" + strings.ReplaceAll(raw, "```", "'''") + "\n```\n")
	if err != nil {
		return raw
	}
	return strings.Trim(out, "\n")
}

type rendererKey struct {
	style string
	wrap  int
}

// renderers caches one glamour renderer per style and wrap width.
var renderers = struct {
	mu    sync.Mutex
	byKey map[rendererKey]*glamour.TermRenderer
}{byKey: make(map[rendererKey]*glamour.TermRenderer)}

// rendererFor must be called with renderers.mu held.
func rendererFor(style string, wrap int) (*glamour.TermRenderer, error) {
	k := rendererKey{style: style, wrap: wrap}
	if r, ok := renderers.byKey[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, err
	}
	renderers.byKey[k] = r
	return r, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
