package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, slog.LevelInfo, "json"))
		logger.Debug("hidden")
		logger.Info("Natillera created", "natillera_id", "n1")

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
		}
		if record["msg"] != "Natillera created" || record["natillera_id"] != "n1" {
			t.Errorf("unexpected record %v", record)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, slog.LevelWarn, ""))
		logger.Info("hidden")
		logger.Warn("Re-review", "contribution_id", "c1")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("expected INFO to be filtered, got %q", out)
		}
		if !strings.Contains(out, "Re-review") || !strings.Contains(out, "c1") {
			t.Errorf("expected warning in output, got %q", out)
		}
	})
}
