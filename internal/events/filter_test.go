package events

import (
	"fmt"
	"testing"

	"github.com/siem-console/tui/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []client.SecurityEvent {
	return []client.SecurityEvent{
		{ID: "1", EventType: "ssh_login", Severity: "high", Hostname: "web-01", Source: "/var/log/auth.log"},
		{ID: "2", EventType: "sudo_command", Severity: "Critical", Hostname: "db-01", Source: "auditd"},
		{ID: "3", EventType: "SSH_LOGIN_FAILED", Severity: "medium", Hostname: "edge", Source: "web-proxy"},
		{ID: "4", EventType: "user_logout", Severity: "info", Hostname: "web-02", Source: "journald"},
		{ID: "5", EventType: "", Severity: "", Hostname: "", Source: ""},
	}
}

func ids(evs []client.SecurityEvent) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.ID
	}
	return out
}

func TestNewCriteriaNormalizes(t *testing.T) {
	c := NewCriteria("SSH", "HIGH", "  Web-01  ")
	assert.Equal(t, Criteria{Type: "ssh", Severity: "high", Host: "web-01"}, c)
	assert.True(t, NewCriteria("", "", "   ").IsZero())
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no filters", Criteria{}, []string{"1", "2", "3", "4", "5"}},
		{"type substring case-insensitive", NewCriteria("ssh", "", ""), []string{"1", "3"}},
		{"severity exact case-insensitive", NewCriteria("", "critical", ""), []string{"2"}},
		{"severity is not substring", NewCriteria("", "crit", ""), []string{}},
		{"host matches hostname", NewCriteria("", "", "db"), []string{"2"}},
		{"host matches source", NewCriteria("", "", "web"), []string{"1", "3", "4"}},
		{"combined", NewCriteria("ssh", "medium", "proxy"), []string{"3"}},
		{"nothing matches", NewCriteria("kernel", "", ""), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleEvents(), tt.criteria))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterCountMatchesPredicates(t *testing.T) {
	all := make([]client.SecurityEvent, 0, 200)
	types := []string{"ssh_login", "sudo_command", "user_login", "auth_failure"}
	sevs := []string{"critical", "high", "medium", "low", "info"}
	for i := 0; i < 200; i++ {
		all = append(all, client.SecurityEvent{
			ID:        fmt.Sprint(i),
			EventType: types[i%len(types)],
			Severity:  sevs[i%len(sevs)],
			Hostname:  fmt.Sprintf("host-%d", i%7),
		})
	}

	for _, typ := range append(types, "") {
		for _, sev := range append(sevs, "") {
			for _, host := range []string{"", "host-3", "host"} {
				c := NewCriteria(typ, sev, host)
				want := 0
				for _, ev := range all {
					if c.Match(ev) {
						want++
					}
				}
				got := Filter(all, c)
				require.Len(t, got, want, "criteria %+v", c)
				for _, ev := range got {
					require.True(t, c.Match(ev))
				}
			}
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	all := sampleEvents()
	_ = Filter(all, NewCriteria("ssh", "", ""))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(all))
}
