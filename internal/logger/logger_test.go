package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigureJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "debug", Format: "json", Output: &buf})
	defer Configure(Options{Level: "info", Format: "json"})

	Info("strategy succeeded", "strategy", "local", "gaps", 12)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "strategy succeeded" {
		t.Errorf("Expected message 'strategy succeeded', got %v", entry["message"])
	}
	if entry["strategy"] != "local" {
		t.Errorf("Expected strategy field 'local', got %v", entry["strategy"])
	}
	if entry["gaps"] != float64(12) {
		t.Errorf("Expected gaps field 12, got %v", entry["gaps"])
	}
	if entry["service"] != "gapscout" {
		t.Errorf("Expected service field 'gapscout', got %v", entry["service"])
	}
}

func TestErrorIncludesError(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "info", Format: "json", Output: &buf})
	defer Configure(Options{Level: "info", Format: "json"})

	Error("strategy failed", errors.New("boom"), "strategy", "ai")

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("Expected error field in %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", Format: "json", Output: &buf})
	defer Configure(Options{Level: "info", Format: "json"})

	Debug("hidden")
	Info("hidden too")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn level, got %q", buf.String())
	}

	Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected warn message to be logged, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, expected := range tests {
		if got := parseLevel(input); got != expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", input, got, expected)
		}
	}
}
