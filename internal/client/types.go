// Package client provides the HTTP client for the SIEM backend API.
// Types mirror the backend wire shapes without sharing code with it.
package client

import (
	"encoding/json"
)

// Severity is the fixed-vocabulary urgency of a security event.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists the known severities in display order.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// SecurityEvent is one detected log record as stored by the backend.
type SecurityEvent struct {
	ID        string `json:"_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Source    string `json:"source,omitempty"`
	User      string `json:"user,omitempty"`
	Process   string `json:"process,omitempty"`
	Command   string `json:"command,omitempty"`
	RawLog    string `json:"raw_log,omitempty"`

	// raw is the record exactly as received, including fields this
	// struct does not know about.
	raw json.RawMessage
}

type securityEventFields SecurityEvent

// UnmarshalJSON decodes the known fields and keeps the original bytes.
func (e *SecurityEvent) UnmarshalJSON(data []byte) error {
	var f securityEventFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*e = SecurityEvent(f)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the record as received from the backend. Events built in
// code (not decoded) fall back to their marshalled known fields.
func (e SecurityEvent) Raw() json.RawMessage {
	if len(e.raw) > 0 {
		return e.raw
	}
	data, err := json.Marshal(securityEventFields(e))
	if err != nil {
		return nil
	}
	return data
}

// EventsResponse is the shape of GET /api/events.
type EventsResponse struct {
	Events      []SecurityEvent `json:"events"`
	Total       int             `json:"total,omitempty"`
	DBConnected bool            `json:"db_connected,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// Agent is one row of summary.active_agents.
type Agent struct {
	Hostname     string `json:"hostname"`
	LastActivity string `json:"last_activity"`
	EventCount   int    `json:"event_count"`
	Severity     string `json:"severity,omitempty"`
}

// AuthLog is one row of summary.auth_logs.
type AuthLog struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	EventType string `json:"event_type"`
	Severity  string `json:"severity"`
}

// UserActivity is one row of summary.top_users.
type UserActivity struct {
	User         string `json:"user"`
	Count        int    `json:"count"`
	LastActivity string `json:"last_activity"`
}

// ProcessActivity is one row of summary.top_processes.
type ProcessActivity struct {
	Process        string `json:"process"`
	Count          int    `json:"count"`
	MostActiveHost string `json:"most_active_host"`
}

// Summary mirrors GET /api/dashboard/summary.
type Summary struct {
	ActiveAgents   []Agent           `json:"active_agents"`
	EventsToday    int               `json:"events_today"`
	CriticalEvents int               `json:"critical_events"`
	UniqueHosts    int               `json:"unique_hosts"`
	AuthLogs       []AuthLog         `json:"auth_logs"`
	TopUsers       []UserActivity    `json:"top_users"`
	TopProcesses   []ProcessActivity `json:"top_processes"`
	DBConnected    bool              `json:"db_connected,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// Health mirrors GET /api/health.
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
