package detail

import (
	"strings"
	"testing"

	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/theme"
)

var testPalette = theme.NewPalette(nil, map[string]string{"critical": "#e74c3c"}, "", "")

func TestFieldsFallback(t *testing.T) {
	fields := Fields(client.SecurityEvent{ID: "e1", Hostname: "web-1"})
	want := map[string]string{
		"Event ID": "e1",
		"Source":   "N/A",
		"Process":  "N/A",
		"Command":  "N/A",
		"User":     "N/A",
		"Hostname": "web-1",
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for _, f := range fields {
		if want[f[0]] != f[1] {
			t.Errorf("%s = %q, want %q", f[0], f[1], want[f[0]])
		}
	}
}

func TestViewShowsRawLog(t *testing.T) {
	ev := client.SecurityEvent{
		ID:       "abc",
		Severity: "critical",
		Command:  "sudo su",
		RawLog:   "sshd: Failed password for root",
	}
	v := New(ev, testPalette, "notty", 80).View()
	for _, want := range []string{"Event Details", "CRITICAL", "abc", "sudo su", "Failed password for root", "[e] export"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewWithoutRawLog(t *testing.T) {
	v := New(client.SecurityEvent{ID: "x"}, testPalette, "notty", 60).View()
	if !strings.Contains(v, "No raw log available") {
		t.Error("missing raw log should show the fallback copy")
	}
}

func TestRenderRawLogUnknownStyleFallsBack(t *testing.T) {
	out := RenderRawLog("plain line", "no-such-style", 40)
	if !strings.Contains(out, "plain line") {
		t.Errorf("fallback output = %q", out)
	}
}

func TestBadgeWithoutSeverity(t *testing.T) {
	v := New(client.SecurityEvent{ID: "x"}, testPalette, "notty", 60).View()
	if !strings.Contains(v, "UNKNOWN") {
		t.Error("missing severity should render the UNKNOWN badge")
	}
}

func TestRendererReusedPerStyleAndWidth(t *testing.T) {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()

	a, err := rendererFor("notty", 70)
	if err != nil {
		t.Fatalf("rendererFor: %v", err)
	}
	b, _ := rendererFor("notty", 70)
	if a != b {
		t.Error("same style and width should reuse the renderer")
	}
	c, _ := rendererFor("notty", 71)
	if c == a {
		t.Error("a different width needs its own renderer")
	}
	if _, err := rendererFor("no-such-style", 70); err == nil {
		t.Error("unknown style should fail")
	}
	if _, ok := renderers.byKey[rendererKey{style: "no-such-style", wrap: 70}]; ok {
		t.Error("failed renderers should not be cached")
	}
}

func TestRepeatedViewsRenderSameOutput(t *testing.T) {
	m := New(client.SecurityEvent{ID: "x", RawLog: "kernel: oom"}, testPalette, "notty", 64)
	first := m.View()
	if second := m.View(); second != first {
		t.Errorf("cached renderer changed output:\n%s\n---\n%s", first, second)
	}
}
