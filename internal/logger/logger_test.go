package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"Warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	l, err := New("debug", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Component(l, "events").Info("fetched")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"message":"fetched"`) {
		t.Errorf("log output missing message: %s", out)
	}
	if !strings.Contains(out, `"component":"events"`) {
		t.Errorf("log output missing component: %s", out)
	}
}

func TestNewEmptyPathIsNop(t *testing.T) {
	l, err := New("info", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
}
