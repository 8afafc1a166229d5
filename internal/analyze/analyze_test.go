package analyze

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark2-vision/pipemon/internal/pipeline"
)

func writeLog(t *testing.T, dir, stage, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, stage+".log"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
}

func TestRunMissingDir(t *testing.T) {
	if _, err := Run(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Run on a missing directory should fail")
	}
}

func TestRunEmptyDir(t *testing.T) {
	report, err := Run(t.TempDir())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.StagesSeen != 0 {
		t.Errorf("Empty dir should report no stages, got %d", report.StagesSeen)
	}
}

func TestRunStageAnalysis(t *testing.T) {
	dir := t.TempDir()

	writeLog(t, dir, "init",
		"[2026-03-01 10:00:00] [INFO] init: starting\n"+
			"[2026-03-01 10:00:30] [INFO] init: done\n")
	writeLog(t, dir, "matcher",
		"[2026-03-01 10:01:00] [INFO] matcher: matching 10/40\n"+
			"[2026-03-01 10:05:00] [ERROR] matcher: pair rejected\n"+
			"[2026-03-01 10:06:00] [WARNING] matcher: low inliers\n"+
			"[2026-03-01 10:10:00] [INFO] matcher: matching 40/40\n")

	report, err := Run(dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.StagesSeen != 2 {
		t.Fatalf("Expected 2 stages, got %d", report.StagesSeen)
	}

	// Stages come back in pipeline order
	if report.Stages[0].Stage != "init" || report.Stages[1].Stage != "matcher" {
		t.Errorf("Stages out of order: %s, %s", report.Stages[0].Stage, report.Stages[1].Stage)
	}

	m := report.Stages[1]
	if m.Errors != 1 {
		t.Errorf("Matcher errors: got %d, want 1", m.Errors)
	}
	if m.Warnings != 1 {
		t.Errorf("Matcher warnings: got %d, want 1", m.Warnings)
	}
	if m.Lines != 4 {
		t.Errorf("Matcher lines: got %d, want 4", m.Lines)
	}
	if m.Duration != 9*time.Minute {
		t.Errorf("Matcher duration: got %v, want 9m", m.Duration)
	}
	if m.Progress != 100 {
		t.Errorf("Matcher progress: got %v, want 100", m.Progress)
	}

	if report.StagesFailed != 1 {
		t.Errorf("Stages with errors: got %d, want 1", report.StagesFailed)
	}

	// Total spans first init timestamp to last matcher timestamp
	if report.TotalDuration != 10*time.Minute {
		t.Errorf("Total duration: got %v, want 10m", report.TotalDuration)
	}
}

func TestRunIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "random_tool", "[2026-03-01 10:00:00] ERROR everything broke\n")

	report, err := Run(dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.StagesSeen != 0 {
		t.Errorf("Non-stage logs should be ignored, got %d stages", report.StagesSeen)
	}
}

func TestRunNoTimestamps(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "ingest", "copying files\n50%\n")

	report, err := Run(dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sr := report.Stages[0]
	if !sr.StartTime.IsZero() {
		t.Error("No timestamps means no start time")
	}
	if sr.Duration != 0 {
		t.Errorf("No timestamps means zero duration, got %v", sr.Duration)
	}
	if sr.Progress != 50 {
		t.Errorf("Progress should still parse: got %v", sr.Progress)
	}
}

func TestRunAttachesCheckpoint(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "init", "[2026-03-01 10:00:00] [INFO] init: done\n")

	if err := pipeline.NewCheckpointStore(dir).Update("init", nil); err != nil {
		t.Fatalf("Checkpoint update failed: %v", err)
	}

	report, err := Run(dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.LastCompletedStep != "init" {
		t.Errorf("Last completed step: got %q, want init", report.LastCompletedStep)
	}
	if report.ResumeStep != "ingest" {
		t.Errorf("Resume step: got %q, want ingest", report.ResumeStep)
	}
}
