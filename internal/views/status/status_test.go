package status

import (
	"strings"
	"testing"
)

func TestViewShowsUserAndScreen(t *testing.T) {
	m := New()
	m.Username = "analyst"
	m.Screen = "Events"
	m.Connection = Connected

	v := m.View()
	for _, want := range []string{"Connected", "analyst @ Events"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewServicesSorted(t *testing.T) {
	m := New()
	m.Width = 120
	m.SetServices(map[string]string{"mongodb": "connected", "api": "healthy"})

	v := m.View()
	api := strings.Index(v, "api: healthy")
	db := strings.Index(v, "mongodb: connected")
	if api < 0 || db < 0 {
		t.Fatalf("services missing from view: %q", v)
	}
	if api > db {
		t.Error("services should render in name order")
	}
}

func TestDisconnected(t *testing.T) {
	m := New()
	m.Connection = Disconnected
	if !strings.Contains(m.View(), "Disconnected") {
		t.Error("expected Disconnected indicator")
	}
	if !strings.Contains(m.View(), "guest") {
		t.Error("expected guest placeholder without a user")
	}
}
