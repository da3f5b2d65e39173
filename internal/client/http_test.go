package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, StaticToken("dG9rZW4="), 5*time.Second, nil)
}

func TestGetSummarySendsBasicAuth(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"active_agents":[{"hostname":"web-1","last_activity":"2025-01-01T00:00:00Z","event_count":4}],"events_today":12,"critical_events":2,"unique_hosts":3}`))
	})

	s, err := c.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Basic dG9rZW4=", gotAuth)
	assert.Equal(t, "/api/dashboard/summary", gotPath)
	assert.Equal(t, 12, s.EventsToday)
	require.Len(t, s.ActiveAgents, 1)
	assert.Equal(t, "web-1", s.ActiveAgents[0].Hostname)
	assert.Equal(t, 4, s.ActiveAgents[0].EventCount)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Incorrect username or password"}`, http.StatusUnauthorized)
	})

	_, err := c.GetEvents(context.Background(), 0, 1000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestServerErrorIsStatusError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetTimeline(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Contains(t, err.Error(), "server error: 502")
}

func TestGetEventsQueryAndRawRecord(t *testing.T) {
	var gotQuery string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"events":[{"_id":"e1","event_type":"ssh_login","severity":"high","hostname":"db","agent_id":"a-7"}],"total":1}`))
	})

	resp, err := c.GetEvents(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, "limit=1000&skip=0", gotQuery)
	require.Len(t, resp.Events, 1)

	ev := resp.Events[0]
	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, "ssh_login", ev.EventType)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(ev.Raw(), &raw))
	assert.Equal(t, "a-7", raw["agent_id"], "unknown fields must survive in the raw record")
}

func TestRawFallsBackToKnownFields(t *testing.T) {
	ev := SecurityEvent{ID: "x", Severity: "low"}
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(ev.Raw(), &raw))
	assert.Equal(t, map[string]interface{}{"_id": "x", "severity": "low"}, raw)
}

func TestNoCredentialsOmitsHeader(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{"status":"healthy","services":{"database":"connected"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", nil, 0, nil)
	h, err := c.GetHealth(context.Background())
	require.NoError(t, err)
	assert.False(t, hadAuth)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "connected", h.Services["database"])
}

func TestContextCancellation(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetEventsByType(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithCredentialsCopies(t *testing.T) {
	base := NewHTTPClient("http://example", StaticToken("a"), 0, nil)
	probe := base.WithCredentials(StaticToken("b"))
	assert.Equal(t, "a", base.creds.Token())
	assert.Equal(t, "b", probe.creds.Token())
	assert.Equal(t, base.BaseURL(), probe.BaseURL())
}
