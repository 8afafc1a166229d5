package logwatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, dir, stage, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, stage+".log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
	return path
}

func TestLatestStage(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeLog(t, dir, "init", "done\n", base)
	writeLog(t, dir, "matcher", "matching 3/10\n", base.Add(30*time.Minute))
	writeLog(t, dir, "ingest", "done\n", base.Add(5*time.Minute))

	stage, mtime, ok := LatestStage(dir)
	if !ok {
		t.Fatal("LatestStage should find logs")
	}
	if stage != "matcher" {
		t.Errorf("Latest stage should be matcher, got %s", stage)
	}

	want := base.Add(30 * time.Minute)
	if diff := mtime.Sub(want); diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("Unexpected mtime: got %v, want about %v", mtime, want)
	}
}

func TestLatestStageEmpty(t *testing.T) {
	if _, _, ok := LatestStage(t.TempDir()); ok {
		t.Error("LatestStage on empty dir should report not found")
	}
}

func TestLatestStageIgnoresForeignLogs(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "not_a_stage", "99%\n", time.Now())

	if _, _, ok := LatestStage(dir); ok {
		t.Error("Non-stage log files should be ignored")
	}
}

func TestExtractProgress(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"fraction", "processed 3/10 images\n", 30},
		{"last fraction wins", "1/10\n5/10\n7 / 10\n", 70},
		{"percent", "progress: 45%\n", 45},
		{"fraction beats percent", "10%\n2/4\n", 50},
		{"zero total", "0/0\n", 0},
		{"no progress markers", "starting up\n", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLog(t, dir, "matcher", tt.content, time.Now())
			if got := ExtractProgress(path); got != tt.want {
				t.Errorf("ExtractProgress(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractProgressMissingFile(t *testing.T) {
	if got := ExtractProgress(filepath.Join(t.TempDir(), "nope.log")); got != 0 {
		t.Errorf("Missing log should report 0, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-2 * time.Hour)

	writeLog(t, dir, "init", "done\n", base)
	writeLog(t, dir, "sparse_reconstruction", "frames 25/100\n", base.Add(90*time.Minute))

	st := Snapshot(dir)
	if st.Waiting {
		t.Fatal("Snapshot should not be waiting")
	}
	if st.Stage != "sparse_reconstruction" {
		t.Errorf("Active stage should be sparse_reconstruction, got %s", st.Stage)
	}
	if st.Progress != 25 {
		t.Errorf("Progress should be 25, got %v", st.Progress)
	}

	// Elapsed is measured between log mtimes, so it is stable
	want := 90 * time.Minute
	if st.Elapsed < want-2*time.Second || st.Elapsed > want+2*time.Second {
		t.Errorf("Elapsed should be about %v, got %v", want, st.Elapsed)
	}
}

func TestSnapshotWaiting(t *testing.T) {
	st := Snapshot(t.TempDir())
	if !st.Waiting {
		t.Error("Snapshot of empty dir should be waiting")
	}
	line := RenderLine(st)
	if !strings.Contains(line, "WAITING") {
		t.Errorf("Waiting line should say WAITING: %q", line)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 3*time.Minute + 7*time.Second, "25:03:07"},
		{-5 * time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderLine(t *testing.T) {
	line := RenderLine(Status{
		Stage:    "matcher",
		Progress: 50,
		Elapsed:  time.Minute,
	})

	if !strings.HasPrefix(line, "\r[matcher]") {
		t.Errorf("Line should start with the stage tag: %q", line)
	}
	if !strings.Contains(line, strings.Repeat("#", 15)+strings.Repeat("-", 15)) {
		t.Errorf("50%% should fill half the bar: %q", line)
	}
	if !strings.Contains(line, "50.0%") {
		t.Errorf("Line should show the percentage: %q", line)
	}
	if !strings.Contains(line, "Elapsed: 00:01:00") {
		t.Errorf("Line should show elapsed time: %q", line)
	}
}

func TestRenderLineClampsOverflow(t *testing.T) {
	line := RenderLine(Status{Stage: "init", Progress: 250})
	if strings.Contains(line, strings.Repeat("#", 31)) {
		t.Errorf("Bar should be clamped to its width: %q", line)
	}
}
