package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/theme"
)

// Placeholder labels for charts with no data.
const (
	TypePlaceholder     = "No data yet"
	SeverityPlaceholder = "No data"
	waitingCopy         = "Waiting for events..."
)

// Bar is one category of a chart.
type Bar struct {
	Label string
	Value int
	Color lipgloss.Color
}

// Chart is the view-model of one chart widget.
type Chart struct {
	Title       string
	Bars        []Bar
	Placeholder bool
}

// Labels returns the category labels in display order.
func (c Chart) Labels() []string {
	out := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Label
	}
	return out
}

// Values returns the category values in display order.
func (c Chart) Values() []int {
	out := make([]int, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Value
	}
	return out
}

// EmptyTimeline returns 24 zero-valued hourly buckets labelled 00:00-23:00.
func EmptyTimeline() Chart {
	bars := make([]Bar, 24)
	for h := range bars {
		bars[h] = Bar{Label: fmt.Sprintf("%02d:00", h), Color: theme.ColorAccent}
	}
	return Chart{Title: "Events per hour", Bars: bars}
}

// TimelineChart uses the returned buckets in the order returned.
func TimelineChart(c client.Counts) Chart {
	if len(c.Items) == 0 {
		return EmptyTimeline()
	}
	bars := make([]Bar, len(c.Items))
	for i, it := range c.Items {
		bars[i] = Bar{Label: it.Label, Value: it.Value, Color: theme.ColorAccent}
	}
	return Chart{Title: "Events per hour", Bars: bars}
}

// EmptyTypeChart is the by-type placeholder: one synthetic unit slice.
func EmptyTypeChart(p theme.Palette) Chart {
	return Chart{
		Title:       "Events by type",
		Bars:        []Bar{{Label: TypePlaceholder, Value: 1, Color: p.Placeholder()}},
		Placeholder: true,
	}
}

// TypeChart colours each type by position, cycling the palette.
func TypeChart(c client.Counts, p theme.Palette) Chart {
	if c.Empty() {
		return EmptyTypeChart(p)
	}
	bars := make([]Bar, len(c.Items))
	for i, it := range c.Items {
		bars[i] = Bar{Label: it.Label, Value: it.Value, Color: p.TypeColor(i)}
	}
	return Chart{Title: "Events by type", Bars: bars}
}

// EmptySeverityChart is the by-severity placeholder: one zero bar.
func EmptySeverityChart(p theme.Palette) Chart {
	return Chart{
		Title:       "Events by severity",
		Bars:        []Bar{{Label: SeverityPlaceholder, Value: 0, Color: p.Placeholder()}},
		Placeholder: true,
	}
}

// SeverityChart capitalises each severity and colours it by the severity
// palette, keeping the returned order.
func SeverityChart(c client.Counts, p theme.Palette) Chart {
	if c.Empty() {
		return EmptySeverityChart(p)
	}
	bars := make([]Bar, len(c.Items))
	for i, it := range c.Items {
		bars[i] = Bar{Label: theme.Capitalize(it.Label), Value: it.Value, Color: p.SeverityColor(it.Label)}
	}
	return Chart{Title: "Events by severity", Bars: bars}
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// renderTimeline draws one glyph per bucket plus a sparse hour axis.
func renderTimeline(c Chart, width int) string {
	peak := 0
	total := 0
	for _, b := range c.Bars {
		peak = max(peak, b.Value)
		total += b.Value
	}

	var spark strings.Builder
	for _, b := range c.Bars {
		idx := 0
		if peak > 0 && b.Value > 0 {
			idx = b.Value * (len(sparkGlyphs) - 1) / peak
		}
		spark.WriteRune(sparkGlyphs[idx])
	}

	var axis strings.Builder
	for i, b := range c.Bars {
		if i%6 == 0 {
			label := b.Label
			if i+len(label) > len(c.Bars) {
				break
			}
			axis.WriteString(label)
			axis.WriteString(strings.Repeat(" ", max(0, 6-len(label))))
		}
	}

	title := theme.StyleHeader.Render(c.Title)
	stats := theme.StyleDimmed.Render(fmt.Sprintf("total %d  peak %d", total, peak))
	body := lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(spark.String())

	return theme.StyleBorder.Padding(0, 1).Width(max(width, 30)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title+"  "+stats, body, theme.StyleDimmed.Render(axis.String())))
}

// renderBars draws a horizontal bar per category.
func renderBars(c Chart, width int) string {
	const labelW = 16
	barW := max(10, width-labelW-12)

	title := theme.StyleHeader.Render(c.Title)
	lines := []string{title}

	if c.Placeholder {
		b := c.Bars[0]
		swatch := lipgloss.NewStyle().Foreground(b.Color).Render(strings.Repeat("░", barW/2))
		lines = append(lines,
			fmt.Sprintf("%-*s %s", labelW, b.Label, swatch),
			theme.StyleDimmed.Render(waitingCopy))
		return theme.StyleBorder.Padding(0, 1).Width(max(width, 30)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	peak := 0
	for _, b := range c.Bars {
		peak = max(peak, b.Value)
	}
	for _, b := range c.Bars {
		n := 0
		if peak > 0 && b.Value > 0 {
			n = b.Value * barW / peak
		}
		if b.Value > 0 && n == 0 {
			n = 1
		}
		bar := lipgloss.NewStyle().Foreground(b.Color).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-*s %s %d", labelW, theme.Truncate(b.Label, labelW), bar, b.Value))
	}
	return theme.StyleBorder.Padding(0, 1).Width(max(width, 30)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
