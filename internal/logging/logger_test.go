package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WARN, false)
	logger.SetOutput(&buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")
	logger.Error("also visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Messages below WARN should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "also visible") {
		t.Errorf("WARN and ERROR should pass: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, true)
	logger.SetOutput(&buf)

	logger.Info("launch started", map[string]interface{}{"entry": "monitor.py"})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output should be valid JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "INFO" {
		t.Errorf("Level mismatch: %q", entry.Level)
	}
	if entry.Message != "launch started" {
		t.Errorf("Message mismatch: %q", entry.Message)
	}
	if entry.Fields["entry"] != "monitor.py" {
		t.Errorf("Field mismatch: %v", entry.Fields)
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(INFO, true)
	logger.SetOutput(&buf)

	child := logger.WithField("run_id", "20260301-100000")
	child.Info("started")

	if !strings.Contains(buf.String(), "20260301-100000") {
		t.Errorf("Context field should appear in output: %q", buf.String())
	}

	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "run_id") {
		t.Error("WithField must not mutate the parent logger")
	}
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewFileLogger(dir, "launcher", INFO, false, false)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Info("venv detected")
	logger.Close()

	logPath := filepath.Join(dir, "pipemon", "launcher.log")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "venv detected") {
		t.Errorf("Log file should contain the message: %q", data)
	}
}

func TestFileLoggerRotatesOnWrite(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewFileLogger(dir, "launcher", INFO, false, false)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()
	logger.SetMaxSize(64)

	logger.Info("first entry, long enough to push the file past the threshold")
	logger.Info("second entry")

	backups, err := filepath.Glob(filepath.Join(dir, "pipemon", "launcher.log.*"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("Expected one rotated backup, got %v", backups)
	}

	old, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if !strings.Contains(string(old), "first entry") {
		t.Errorf("Backup should hold the pre-rotation entries: %q", old)
	}

	live, err := os.ReadFile(filepath.Join(dir, "pipemon", "launcher.log"))
	if err != nil {
		t.Fatalf("Failed to read live log: %v", err)
	}
	if !strings.Contains(string(live), "second entry") {
		t.Errorf("Live log should hold the post-rotation entry: %q", live)
	}
	if strings.Contains(string(live), "first entry") {
		t.Errorf("Live log should start fresh after rotation: %q", live)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"ERROR", ERROR},
		{"nonsense", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
