package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
	}
	for _, tc := range cases {
		got, err := ParseLogLevel(tc.in)
		if err != nil {
			t.Errorf("ParseLogLevel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: WarnLevel, Format: TextFormat, Output: &buf})

	logger.Debug("quiet")
	logger.Info("quiet")
	logger.Warn("loud warning")
	logger.Error("loud error")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("messages below the threshold were written")
	}
	if !strings.Contains(out, "loud warning") || !strings.Contains(out, "loud error") {
		t.Errorf("expected warn and error output, got %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: ErrorLevel, Format: TextFormat, Output: &buf})

	logger.Info("before")
	logger.SetLevel(InfoLevel)
	logger.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("info written while level was error")
	}
	if !strings.Contains(out, "after") {
		t.Error("info missing after lowering the level")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})

	logger.Info("structured message", map[string]interface{}{"count": 3})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" || entry.Message != "structured message" {
		t.Errorf("entry %+v", entry)
	}
	if entry.Fields["count"] != float64(3) {
		t.Errorf("fields %v, want count=3", entry.Fields)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})

	logger.WithComponent("search").Info("tagged")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Fields["component"] != "search" {
		t.Errorf("fields %v, want component=search", entry.Fields)
	}
}

func TestTextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: InfoLevel, Format: TextFormat, Output: &buf})

	logger.Warnf("slow query took %dms", 250)

	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "slow query took 250ms") {
		t.Errorf("unexpected text output %q", out)
	}
}
