// Package theme provides the Lip Gloss color palette and reusable styles
// for the SIEM console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#3498db")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Palette holds the chart and severity colours. It is built from
// configuration so deployments can restyle without a rebuild.
type Palette struct {
	types       []lipgloss.Color
	severity    map[string]lipgloss.Color
	unknown     lipgloss.Color
	placeholder lipgloss.Color
}

// NewPalette builds a palette. Severity keys are matched case-insensitively.
func NewPalette(types []string, severity map[string]string, unknown, placeholder string) Palette {
	p := Palette{
		severity:    make(map[string]lipgloss.Color, len(severity)),
		unknown:     lipgloss.Color(unknown),
		placeholder: lipgloss.Color(placeholder),
	}
	for _, c := range types {
		p.types = append(p.types, lipgloss.Color(c))
	}
	if len(p.types) == 0 {
		p.types = []lipgloss.Color{ColorAccent}
	}
	for k, v := range severity {
		p.severity[strings.ToLower(k)] = lipgloss.Color(v)
	}
	if p.unknown == "" {
		p.unknown = ColorDimmed
	}
	if p.placeholder == "" {
		p.placeholder = ColorBorder
	}
	return p
}

// TypeColor cycles through the type palette by position.
func (p Palette) TypeColor(i int) lipgloss.Color {
	if i < 0 {
		i = -i
	}
	return p.types[i%len(p.types)]
}

// SeverityColor returns the colour for a severity, or the unknown colour.
func (p Palette) SeverityColor(severity string) lipgloss.Color {
	if c, ok := p.severity[strings.ToLower(severity)]; ok {
		return c
	}
	return p.unknown
}

// Placeholder is the colour of synthetic "no data" chart slices.
func (p Palette) Placeholder() lipgloss.Color {
	return p.placeholder
}

// SeverityBadge renders an upper-case severity label in its colour.
func (p Palette) SeverityBadge(severity string) string {
	label := strings.ToUpper(severity)
	if label == "" {
		label = "UNKNOWN"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(p.SeverityColor(severity)).Render(label)
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
