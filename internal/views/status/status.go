package status

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/siem-console/tui/internal/theme"
)

// Connection mirrors the dashboard indicator.
type Connection int

const (
	Connecting Connection = iota
	Connected
	Disconnected
)

// Model holds the status bar state.
type Model struct {
	Username   string
	Screen     string
	Connection Connection
	// Services is the per-service status from the health endpoint.
	Services map[string]string
	Width    int
}

// New creates a status bar model.
func New() Model {
	return Model{
		Services: make(map[string]string),
	}
}

// SetServices replaces the service health map.
func (m *Model) SetServices(services map[string]string) {
	m.Services = make(map[string]string, len(services))
	for k, v := range services {
		m.Services[k] = v
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch m.Connection {
	case Connected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	case Disconnected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Disconnected")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ Connecting...")
	}

	user := m.Username
	if user == "" {
		user = "guest"
	}
	who := fmt.Sprintf("%s @ %s", user, m.Screen)

	names := make([]string, 0, len(m.Services))
	for name := range m.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var healthParts []string
	for _, name := range names {
		state := m.Services[name]
		var color lipgloss.Color
		switch strings.ToLower(state) {
		case "healthy", "connected", "ok", "up":
			color = theme.ColorHealthy
		case "degraded":
			color = theme.ColorWarning
		case "":
			color = theme.ColorDimmed
		default:
			color = theme.ColorDanger
		}
		healthParts = append(healthParts, lipgloss.NewStyle().Foreground(color).Render(
			fmt.Sprintf("%s: %s", name, state),
		))
	}
	healthStr := strings.Join(healthParts, "  ")

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + who
	if healthStr != "" {
		content += sep + healthStr
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
