package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/config"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/theme"
)

type fakeFetcher struct {
	events []client.SecurityEvent
	err    error
	calls  int
}

func (f *fakeFetcher) GetEvents(ctx context.Context, skip, limit int) (*client.EventsResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.EventsResponse{Events: f.events}, nil
}

// decodeEvents builds n events through JSON so each keeps its raw record.
func decodeEvents(t *testing.T, n int, mutate func(i int, m map[string]interface{})) []client.SecurityEvent {
	t.Helper()
	var recs []map[string]interface{}
	for i := 0; i < n; i++ {
		rec := map[string]interface{}{
			"_id":        fmt.Sprintf("ev-%03d", i),
			"event_type": "ssh_login",
			"severity":   "info",
			"hostname":   "host-1",
			"agent_id":   "a-1",
		}
		if mutate != nil {
			mutate(i, rec)
		}
		recs = append(recs, rec)
	}
	data, err := json.Marshal(map[string]interface{}{"events": recs})
	require.NoError(t, err)
	var resp client.EventsResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp.Events
}

func loggedIn() *session.Store {
	s := session.NewStore()
	s.Set(session.NewCredential("admin", "pw"))
	return s
}

func newModel(t *testing.T, f *fakeFetcher, store *session.Store, mutate func(*Options)) Model {
	t.Helper()
	p := config.Default().Palette
	opts := Options{
		ExportDir:     t.TempDir(),
		ToastDuration: time.Millisecond,
		MarkdownStyle: "notty",
		Palette:       theme.NewPalette(p.Types, p.Severity, p.Unknown, p.Placeholder),
		Clock:         clock.NewMock(),
		Clipboard:     func(string) error { return nil },
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(f, store, opts)
}

// drive runs cmd (and nested batches) and feeds every message except
// ticks back into m.
func drive(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			var msgs []tea.Msg
			m, msgs = drive(m, c)
			out = append(out, msgs...)
		}
		return m, out
	}
	switch msg.(type) {
	case LoadedMsg, ExportedMsg, CopiedMsg:
		var next tea.Cmd
		m, next = m.Update(msg)
		if _, isLoad := msg.(LoadedMsg); isLoad {
			var out []tea.Msg
			m, out = drive(m, next)
			return m, append([]tea.Msg{msg}, out...)
		}
		return m, []tea.Msg{msg}
	}
	return m, []tea.Msg{msg}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func loaded(t *testing.T, events []client.SecurityEvent, mutate func(*Options)) Model {
	t.Helper()
	m := newModel(t, &fakeFetcher{events: events}, loggedIn(), mutate)
	cmd := m.Load()
	m, _ = drive(m, cmd)
	require.False(t, m.Loading())
	return m
}

func TestLoadWithoutCredentialRedirects(t *testing.T) {
	f := &fakeFetcher{}
	m := newModel(t, f, session.NewStore(), nil)

	cmd := m.Load()
	require.NotNil(t, cmd)
	_, ok := cmd().(session.ExpiredMsg)
	assert.True(t, ok, "expected session.ExpiredMsg")
	assert.Equal(t, 0, f.calls, "no fetch may be issued without a credential")
	assert.False(t, m.Loading())
}

func TestLoadPopulatesRegistry(t *testing.T) {
	m := loaded(t, decodeEvents(t, 25, nil), nil)
	r := m.Registry()
	assert.Equal(t, 25, r.Len())
	assert.Len(t, r.Visible(), 20)
	assert.Nil(t, m.Err())
}

func TestStaleLoadDropped(t *testing.T) {
	m := newModel(t, &fakeFetcher{}, loggedIn(), nil)
	_ = m.Load()
	_ = m.Load()

	m, _ = m.Update(LoadedMsg{Token: 1, Events: decodeEvents(t, 3, nil)})
	assert.True(t, m.Loading(), "superseded response must not end the load")
	assert.Equal(t, 0, m.Registry().Len())

	m, _ = m.Update(LoadedMsg{Token: 2, Events: decodeEvents(t, 5, nil)})
	assert.False(t, m.Loading())
	assert.Equal(t, 5, m.Registry().Len())
}

func TestUnauthorizedExpiresSession(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("GET /api/events: %w", client.ErrUnauthorized)}
	m := newModel(t, f, loggedIn(), nil)
	cmd := m.Load()
	m, msgs := drive(m, cmd)

	var expired bool
	for _, msg := range msgs {
		if _, ok := msg.(session.ExpiredMsg); ok {
			expired = true
		}
	}
	assert.True(t, expired)
	assert.Nil(t, m.Err(), "401 is not shown as an inline error")
}

func TestServerErrorShowsRetryPanel(t *testing.T) {
	f := &fakeFetcher{err: errors.New("GET /api/events: server error: 500")}
	m := newModel(t, f, loggedIn(), nil)
	cmd := m.Load()
	m, _ = drive(m, cmd)

	require.Error(t, m.Err())
	v := m.View()
	assert.Contains(t, v, "Error loading events")
	assert.Contains(t, v, "server error: 500")
	assert.Contains(t, v, "Try Again")

	f.err = nil
	f.events = decodeEvents(t, 2, nil)
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.True(t, m.Loading())
	m, _ = drive(m, cmd)
	assert.Nil(t, m.Err())
	assert.Equal(t, 2, f.calls)
}

func TestEmptyResultPanel(t *testing.T) {
	m := loaded(t, nil, nil)
	assert.Contains(t, m.View(), "No security events found")
}

func TestFilterChangeResetsPage(t *testing.T) {
	events := decodeEvents(t, 60, func(i int, rec map[string]interface{}) {
		if i%2 == 0 {
			rec["severity"] = "critical"
		}
	})
	m := loaded(t, events, nil)

	m = press(m, "n")
	assert.Equal(t, 2, m.Registry().Page().Current)

	m = press(m, "s")
	r := m.Registry()
	assert.Equal(t, "critical", r.Criteria().Severity)
	assert.Equal(t, 1, r.Page().Current)
	assert.Equal(t, 30, r.Total())

	m = press(m, "n")
	assert.Equal(t, "critical", m.Registry().Criteria().Severity, "page change keeps filters")
}

func TestHostFilterInput(t *testing.T) {
	events := decodeEvents(t, 10, func(i int, rec map[string]interface{}) {
		if i < 3 {
			rec["hostname"] = "WEB-0" + fmt.Sprint(i)
		}
	})
	m := loaded(t, events, nil)

	m = press(m, "/")
	assert.True(t, m.Capturing())
	m = press(m, "web")
	assert.Equal(t, "web", m.Registry().Criteria().Host)
	assert.Equal(t, 3, m.Registry().Total())

	m = press(m, "esc")
	assert.False(t, m.Capturing())

	m = press(m, "x")
	assert.True(t, m.Registry().Criteria().IsZero())
	assert.Equal(t, 10, m.Registry().Total())
}

func TestTypeFilterAndTab(t *testing.T) {
	events := decodeEvents(t, 4, func(i int, rec map[string]interface{}) {
		if i == 1 {
			rec["event_type"] = "sudo_command"
		}
	})
	m := loaded(t, events, nil)

	m = press(m, "t", "sudo")
	assert.Equal(t, 1, m.Registry().Total())

	m = press(m, "tab", "zzz")
	assert.Equal(t, "zzz", m.Registry().Criteria().Host)
	assert.Equal(t, 0, m.Registry().Total())
}

func TestSingleExpansion(t *testing.T) {
	m := loaded(t, decodeEvents(t, 30, nil), nil)

	m = press(m, "enter")
	assert.Equal(t, 0, m.Registry().Expanded())
	assert.Contains(t, m.View(), "Event Details")

	m = press(m, "j", "enter")
	assert.Equal(t, 1, m.Registry().Expanded(), "expanding B collapses A")

	m = press(m, "n")
	assert.Equal(t, -1, m.Registry().Expanded(), "page change resets expansion")
}

func TestExportWritesPageRelativeRecord(t *testing.T) {
	dir := t.TempDir()
	events := decodeEvents(t, 30, func(i int, rec map[string]interface{}) {
		rec["raw_log"] = fmt.Sprintf("line %d", i)
	})
	m := loaded(t, events, func(o *Options) { o.ExportDir = dir })

	m = press(m, "n", "j", "enter")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	m, _ = drive(m, cmd)

	text, ok := m.Toast()
	assert.True(t, ok)
	assert.Equal(t, ToastExported, text)

	data, err := os.ReadFile(filepath.Join(dir, "siem-event-ev-021.json"))
	require.NoError(t, err)

	var got, want map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	require.NoError(t, json.Unmarshal(events[21].Raw(), &want))
	assert.Equal(t, want, got)
}

func TestCopyID(t *testing.T) {
	var copied string
	m := loaded(t, decodeEvents(t, 3, nil), func(o *Options) {
		o.Clipboard = func(s string) error {
			copied = s
			return nil
		}
	})

	m = press(m, "j")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m, _ = drive(m, cmd)
	assert.Equal(t, "ev-001", copied)
	text, ok := m.Toast()
	assert.True(t, ok)
	assert.Equal(t, ToastCopied, text)
}

func TestCopyFailureToast(t *testing.T) {
	m := loaded(t, decodeEvents(t, 1, nil), func(o *Options) {
		o.Clipboard = func(string) error { return errors.New("no clipboard utility") }
	})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m, _ = drive(m, cmd)
	text, ok := m.Toast()
	assert.False(t, ok)
	assert.Equal(t, ToastCopyFailed, text)
}

func TestCopyWithoutIDIsNoop(t *testing.T) {
	events := decodeEvents(t, 1, func(i int, rec map[string]interface{}) { delete(rec, "_id") })
	m := loaded(t, events, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Nil(t, cmd)
}

func TestToastAutoDismiss(t *testing.T) {
	m := loaded(t, decodeEvents(t, 1, nil), nil)

	m, first := m.Update(CopiedMsg{ID: "x"})
	m, second := m.Update(ExportedMsg{Path: "p"})

	m, _ = m.Update(first())
	text, _ := m.Toast()
	assert.Equal(t, ToastExported, text, "an older timer must not dismiss a newer toast")

	m, _ = m.Update(second())
	text, _ = m.Toast()
	assert.Empty(t, text)
}

func TestPaginationRendering(t *testing.T) {
	m := loaded(t, decodeEvents(t, 400, nil), nil)
	assert.Contains(t, m.View(), "400 events • Page 1 of 20")

	single := loaded(t, decodeEvents(t, 20, nil), nil)
	assert.NotContains(t, single.View(), "Page 1 of")

	two := loaded(t, decodeEvents(t, 21, nil), nil)
	c, ok := two.Registry().Pagination()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, c.PageLinks())
}

func TestCriticalExample(t *testing.T) {
	events := decodeEvents(t, 25, func(i int, rec map[string]interface{}) {
		if i == 4 || i == 9 || i == 16 {
			rec["severity"] = "critical"
		}
	})
	m := loaded(t, events, nil)
	m.SetFilters("", "critical", "")

	r := m.Registry()
	assert.Equal(t, 3, r.Total())
	assert.Len(t, r.Visible(), 3)
	_, ok := r.Pagination()
	assert.False(t, ok)
	assert.True(t, strings.Contains(m.View(), "Critical"))
}

func TestHelpFollowsFocus(t *testing.T) {
	m := loaded(t, decodeEvents(t, 1, nil), nil)
	assert.Contains(t, m.Help(), "e:export json")

	m = press(m, "t")
	assert.Contains(t, m.Help(), "tab:next filter")
	assert.NotContains(t, m.Help(), "export")
}
