package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "faceangle.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("classified", slog.String("blendshape", "jawOpen"), slog.Int("frames", 42))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "classified") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "blendshape=jawOpen") || !strings.Contains(line, "frames=42") {
		t.Fatalf("missing attributes in log line: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{Level: "warn", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Warn("visible")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug line should be filtered: %q", string(data))
	}
	if !strings.Contains(string(data), "visible") {
		t.Fatalf("warn line missing: %q", string(data))
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("dropped")
	if logger.Enabled(nil, slog.LevelError) {
		t.Fatal("nop logger should not be enabled at error level")
	}
}
