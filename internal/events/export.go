package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/siem-console/tui/internal/client"
)

// FileName returns siem-event-<id>.json, or the unix-millis timestamp when
// the event has no identifier.
func FileName(ev client.SecurityEvent, now time.Time) string {
	id := ev.ID
	if id == "" {
		id = fmt.Sprintf("%d", now.UnixMilli())
	}
	id = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, id)
	return "siem-event-" + id + ".json"
}

// Document renders the event record exactly as received, indented.
func Document(ev client.SecurityEvent) ([]byte, error) {
	raw := ev.Raw()
	if len(raw) == 0 {
		return nil, fmt.Errorf("event %q has no record", ev.ID)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent event %q: %w", ev.ID, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Export writes the event document into dir and returns the file path.
// The file is written to a temp file and renamed into place.
func Export(dir string, ev client.SecurityEvent, now time.Time) (string, error) {
	doc, err := Document(ev)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(ev, now))

	tmp, err := os.CreateTemp(dir, ".siem-event-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("renaming export: %w", err)
	}
	committed = true
	return path, nil
}
