// Package debug keeps the console's activity log: screen changes, session
// transitions, health probes and fetch results, each tagged with the
// component that reported it.
package debug

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/lipgloss"

	"github.com/siem-console/tui/internal/theme"
)

// Kind classifies an entry.
type Kind string

const (
	KindNav    Kind = "nav"
	KindErr    Kind = "err"
	KindAuth   Kind = "auth"
	KindLoad   Kind = "load"
	KindHealth Kind = "health"
)

const (
	capacity  = 200
	stampFmt  = "15:04:05.000"
	sourceCol = 10
	kindCol   = 7
)

// Entry is one activity record.
type Entry struct {
	At     time.Time
	Kind   Kind
	Source string
	Text   string
}

// Model is the activity log and its overlay state. Offset counts rows
// scrolled back from the newest visible entry.
type Model struct {
	Entries    []Entry
	Offset     int
	ErrorsOnly bool

	clock clock.Clock
}

// New creates an empty log. A nil clock uses the wall clock.
func New(clk clock.Clock) Model {
	if clk == nil {
		clk = clock.New()
	}
	return Model{clock: clk}
}

// Record appends an entry, dropping the oldest past capacity, and jumps
// back to the newest row.
func (m *Model) Record(kind Kind, source, text string) {
	m.Entries = append(m.Entries, Entry{At: m.clock.Now(), Kind: kind, Source: source, Text: text})
	if over := len(m.Entries) - capacity; over > 0 {
		m.Entries = append(m.Entries[:0:0], m.Entries[over:]...)
	}
	m.Offset = 0
}

// Visible returns the entries the overlay lists, oldest first.
func (m Model) Visible() []Entry {
	if !m.ErrorsOnly {
		return m.Entries
	}
	var out []Entry
	for _, e := range m.Entries {
		if e.Kind == KindErr {
			out = append(out, e)
		}
	}
	return out
}

// Scroll moves back (positive) or forward (negative) through the visible
// entries, clamped to the list.
func (m *Model) Scroll(delta int) {
	m.Offset = min(max(m.Offset+delta, 0), max(len(m.Visible())-1, 0))
}

// ToggleErrors switches between all entries and failures only.
func (m *Model) ToggleErrors() {
	m.ErrorsOnly = !m.ErrorsOnly
	m.Offset = 0
}

// Tally counts entries per kind.
func (m Model) Tally() map[Kind]int {
	t := make(map[Kind]int)
	for _, e := range m.Entries {
		t[e.Kind]++
	}
	return t
}

func (m Model) summary() string {
	tally := m.Tally()
	kinds := make([]string, 0, len(tally))
	for k := range tally {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := []string{fmt.Sprintf("%d entries", len(m.Entries))}
	for _, k := range kinds {
		parts = append(parts, lipgloss.NewStyle().Foreground(kindColor(Kind(k))).Render(fmt.Sprintf("%s %d", k, tally[Kind(k)])))
	}
	return strings.Join(parts, "  ")
}

// View renders the overlay inside width x height.
func (m Model) View(width, height int) string {
	inner := max(width-4, 30)
	rows := max(height-8, 3)

	head := theme.StyleHeader.Render(" DEBUG LOG ")
	if m.ErrorsOnly {
		head += theme.StyleError.Render("  errors only")
	}
	lines := []string{head, m.summary(), ""}

	visible := m.Visible()
	switch {
	case len(m.Entries) == 0:
		lines = append(lines, theme.StyleDimmed.Render("No activity recorded yet."))
	case len(visible) == 0:
		lines = append(lines, theme.StyleDimmed.Render("No failures recorded."))
	default:
		end := len(visible) - m.Offset
		for _, e := range visible[max(end-rows, 0):end] {
			lines = append(lines, m.row(e, inner-4))
		}
		if m.Offset > 0 {
			lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("… %d newer", m.Offset)))
		}
	}

	lines = append(lines, "", theme.StyleDimmed.Render("j/k:scroll  e:errors only  esc:close"))
	return lipgloss.NewStyle().
		Width(inner).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) row(e Entry, width int) string {
	textW := max(width-len(stampFmt)-sourceCol-kindCol-3, 10)
	return strings.Join([]string{
		theme.StyleDimmed.Render(e.At.Format(stampFmt)),
		lipgloss.NewStyle().Width(sourceCol).Render(theme.Truncate(e.Source, sourceCol)),
		lipgloss.NewStyle().Width(kindCol).Foreground(kindColor(e.Kind)).Render(string(e.Kind)),
		theme.Truncate(e.Text, textW),
	}, " ")
}

func kindColor(k Kind) lipgloss.Color {
	switch k {
	case KindLoad:
		return theme.ColorHealthy
	case KindErr:
		return theme.ColorDanger
	case KindNav:
		return theme.ColorAccent
	case KindAuth, KindHealth:
		return theme.ColorWarning
	}
	return theme.ColorDimmed
}
