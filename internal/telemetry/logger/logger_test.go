package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"text format", Config{Level: "debug", Format: "text"}, false},
		{"console format", Config{Level: "info", Format: "console"}, false},
		{"empty values", Config{}, false},
		{"unknown format", Config{Format: "xml"}, true},
		{"unknown level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "test-value")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log output: %v", err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v, want %q", entry["msg"], "test message")
			}
			if entry["component"] != "test-value" {
				t.Errorf("component = %v, want %q", entry["component"], "test-value")
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.With("instance", "01J0000000").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["instance"] != "01J0000000" {
		t.Errorf("instance = %v, want %q", entry["instance"], "01J0000000")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	child := l.With("k", "v")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	if err := l.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if l.Level() != "debug" || child.Level() != "debug" {
		t.Errorf("Level() = %q/%q, want debug", l.Level(), child.Level())
	}

	child.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug should pass after SetLevel, got %q", buf.String())
	}

	if err := l.SetLevel("nope"); err == nil {
		t.Error("SetLevel() should reject unknown level")
	}
	if l.Level() != "debug" {
		t.Errorf("Level() = %q after failed SetLevel, want debug", l.Level())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	SetDefault(l)

	slog.Info("via slog")
	if !strings.Contains(buf.String(), "via slog") {
		t.Errorf("slog.Default() should write through the logger, got %q", buf.String())
	}

	if err := l.SetLevel("error"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	buf.Reset()
	slog.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("slog.Default() should follow the logger level, got %q", buf.String())
	}
}
