package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/theme"
	"github.com/siem-console/tui/internal/timeago"
)

// Placeholder is the single explanatory row shown for an empty table.
type Placeholder struct {
	Icon  string
	Title string
	Hint  string
}

var (
	agentsEmpty    = Placeholder{"🖥", "No active agents detected", "Waiting for agent connections..."}
	authEmpty      = Placeholder{"🔒", "No authentication events", "Waiting for login activity..."}
	usersEmpty     = Placeholder{"👥", "No user activity data", "Waiting for user events..."}
	processesEmpty = Placeholder{"⚙", "No process data", "Waiting for process events..."}
)

// Table is the view-model of one ranked table.
type Table struct {
	Title   string
	Badge   string
	Headers []string
	Widths  []int
	Rows    [][]string
	Empty   Placeholder
}

// RowCount is the number of rendered rows, counting the placeholder.
func (t Table) RowCount() int {
	if len(t.Rows) == 0 {
		return 1
	}
	return len(t.Rows)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// AgentsTable maps active agents to hostname, last activity, events, status.
func AgentsTable(agents []client.Agent, now time.Time) Table {
	t := Table{
		Title:   "Active Agents",
		Badge:   fmt.Sprintf("%d", len(agents)),
		Headers: []string{"Hostname", "Last Activity", "Events", "Status"},
		Widths:  []int{22, 14, 8, 8},
		Empty:   agentsEmpty,
	}
	for _, a := range agents {
		t.Rows = append(t.Rows, []string{
			orDefault(a.Hostname, timeago.Fallback),
			timeago.Format(a.LastActivity, now),
			fmt.Sprintf("%d", a.EventCount),
			"Active",
		})
	}
	return t
}

// AuthTable maps recent auth logs to time, user, type, severity.
func AuthTable(logs []client.AuthLog) Table {
	t := Table{
		Title:   "Recent Authentication Events",
		Headers: []string{"Time", "User", "Type", "Severity"},
		Widths:  []int{10, 14, 20, 10},
		Empty:   authEmpty,
	}
	for _, l := range logs {
		t.Rows = append(t.Rows, []string{
			timeago.Clock(l.Timestamp),
			orDefault(l.User, "N/A"),
			orDefault(l.EventType, timeago.Fallback),
			orDefault(l.Severity, "info"),
		})
	}
	return t
}

// UsersTable maps top users to user, count, last activity.
func UsersTable(users []client.UserActivity, now time.Time) Table {
	t := Table{
		Title:   "Top Users",
		Headers: []string{"User", "Events", "Last Activity"},
		Widths:  []int{18, 8, 14},
		Empty:   usersEmpty,
	}
	for _, u := range users {
		last := "N/A"
		if u.LastActivity != "" {
			last = timeago.Format(u.LastActivity, now)
		}
		t.Rows = append(t.Rows, []string{
			orDefault(u.User, timeago.Fallback),
			fmt.Sprintf("%d", u.Count),
			last,
		})
	}
	return t
}

// ProcessesTable maps top processes to process, count, most active host.
func ProcessesTable(procs []client.ProcessActivity) Table {
	t := Table{
		Title:   "Top Processes",
		Headers: []string{"Process", "Events", "Most Active Host"},
		Widths:  []int{18, 8, 20},
		Empty:   processesEmpty,
	}
	for _, p := range procs {
		t.Rows = append(t.Rows, []string{
			orDefault(p.Process, timeago.Fallback),
			fmt.Sprintf("%d", p.Count),
			orDefault(p.MostActiveHost, "N/A"),
		})
	}
	return t
}

// renderTable draws a table. sevCol is the index of a severity column to
// colour, or -1.
func renderTable(t Table, palette theme.Palette, sevCol int) string {
	title := theme.StyleHeader.Render(t.Title)
	if t.Badge != "" {
		title += " " + lipgloss.NewStyle().Foreground(theme.ColorBright).Background(theme.ColorAccent).Padding(0, 1).Render(t.Badge)
	}

	cell := func(s string, w int) string {
		return lipgloss.NewStyle().Width(w).Render(theme.Truncate(s, w-1))
	}

	var header []string
	total := 0
	for i, h := range t.Headers {
		header = append(header, cell(h, t.Widths[i]))
		total += t.Widths[i]
	}

	lines := []string{
		title,
		theme.StyleDimmed.Render(strings.Join(header, "")),
		theme.StyleDimmed.Render(strings.Repeat("─", total)),
	}

	if len(t.Rows) == 0 {
		lines = append(lines,
			lipgloss.NewStyle().Width(total).Align(lipgloss.Center).Render(t.Empty.Icon+"  "+t.Empty.Title),
			theme.StyleDimmed.Width(total).Align(lipgloss.Center).Render(t.Empty.Hint))
		return theme.StyleBorder.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	for _, row := range t.Rows {
		var cells []string
		for i, v := range row {
			c := cell(v, t.Widths[i])
			if i == sevCol {
				c = lipgloss.NewStyle().Width(t.Widths[i]).Foreground(palette.SeverityColor(v)).Render(v)
			}
			cells = append(cells, c)
		}
		lines = append(lines, strings.Join(cells, ""))
	}
	return theme.StyleBorder.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
