package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Format: "json", Prefix: "server", Output: &buf})

	l.Info("[Store] Reloaded", "projects", 3)

	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if got["msg"] != "[Store] Reloaded" || got["prefix"] != "server" || got["projects"] != float64(3) {
		t.Fatalf("unexpected entry %v", got)
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewConsoleLogger(ConsoleLoggerParams{Output: &buf})
	quiet.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message written at info level: %q", buf.String())
	}

	verbose := NewConsoleLogger(ConsoleLoggerParams{Debug: true, Output: &buf})
	verbose.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug message missing: %q", buf.String())
	}
}
