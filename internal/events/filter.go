// Package events holds the event browser's view-model: the cached
// collection, filter criteria, pagination and row expansion. Nothing here
// renders; the views package draws whatever this package computes.
package events

import (
	"strings"

	"github.com/siem-console/tui/internal/client"
)

// Criteria is the active filter set. Zero fields match everything.
type Criteria struct {
	Type     string
	Severity string
	Host     string
}

// NewCriteria normalizes raw filter input: lower-cased, host trimmed.
func NewCriteria(eventType, severity, host string) Criteria {
	return Criteria{
		Type:     strings.ToLower(eventType),
		Severity: strings.ToLower(severity),
		Host:     strings.ToLower(strings.TrimSpace(host)),
	}
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return c.Type == "" && c.Severity == "" && c.Host == ""
}

// Match applies the predicates in order: type substring, exact severity,
// then hostname-or-source substring.
func (c Criteria) Match(ev client.SecurityEvent) bool {
	if c.Type != "" && !strings.Contains(strings.ToLower(ev.EventType), c.Type) {
		return false
	}
	if c.Severity != "" && strings.ToLower(ev.Severity) != c.Severity {
		return false
	}
	if c.Host != "" &&
		!strings.Contains(strings.ToLower(ev.Hostname), c.Host) &&
		!strings.Contains(strings.ToLower(ev.Source), c.Host) {
		return false
	}
	return true
}

// Filter returns the events matching c, in their original order. The input
// slice is never modified; with no active filter it is returned as is.
func Filter(all []client.SecurityEvent, c Criteria) []client.SecurityEvent {
	if c.IsZero() {
		return all
	}
	out := make([]client.SecurityEvent, 0, len(all))
	for _, ev := range all {
		if c.Match(ev) {
			out = append(out, ev)
		}
	}
	return out
}
