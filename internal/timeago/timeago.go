// Package timeago formats backend timestamps relative to now.
package timeago

import (
	"fmt"
	"strings"
	"time"
)

// Fallback is returned for missing or unparseable timestamps.
const Fallback = "Unknown"

// DateLayout renders timestamps older than a day.
const DateLayout = "Jan 2, 2006"

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Parse reads the timestamp formats the backend and agents emit. Naive
// timestamps are taken as UTC.
func Parse(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format returns "Just now", "Nm ago", "Nh ago" or a date.
func Format(ts string, now time.Time) string {
	t, ok := Parse(ts)
	if !ok {
		return Fallback
	}
	return Since(t, now)
}

// Since is Format for an already parsed time.
func Since(t, now time.Time) string {
	d := now.Sub(t)
	minutes := int(d / time.Minute)
	hours := minutes / 60

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return t.Local().Format(DateLayout)
	}
}

// Clock renders the time-of-day part of a timestamp, or "N/A".
func Clock(ts string) string {
	t, ok := Parse(ts)
	if !ok {
		return "N/A"
	}
	return t.Local().Format("15:04:05")
}
