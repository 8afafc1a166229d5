// Package logwatch derives pipeline progress from the stage log files.
// Each stage appends to <logs>/<stage>.log; the stage whose log was
// touched most recently is the one currently running, and progress is
// parsed out of that log's content.
package logwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mark2-vision/pipemon/internal/pipeline"
)

var (
	fractionRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	percentRe  = regexp.MustCompile(`(\d+)%`)
)

// Status is one observation of the pipeline, ready to render.
type Status struct {
	Stage    string        // active stage; empty while waiting for logs
	Progress float64       // 0..100
	Elapsed  time.Duration // newest log mtime minus earliest log mtime
	Waiting  bool          // no stage log exists yet
}

// LatestStage returns the stage with the most recently modified log file.
// ok is false when no stage log exists yet.
func LatestStage(logsDir string) (stage string, mtime time.Time, ok bool) {
	for _, s := range pipeline.Stages {
		info, err := os.Stat(filepath.Join(logsDir, pipeline.LogFileName(s)))
		if err != nil {
			continue
		}
		if !ok || info.ModTime().After(mtime) {
			stage = s
			mtime = info.ModTime()
			ok = true
		}
	}
	return stage, mtime, ok
}

// FirstStageTime returns the earliest stage log mtime, which approximates
// the pipeline start time.
func FirstStageTime(logsDir string) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, s := range pipeline.Stages {
		info, err := os.Stat(filepath.Join(logsDir, pipeline.LogFileName(s)))
		if err != nil {
			continue
		}
		if !found || info.ModTime().Before(earliest) {
			earliest = info.ModTime()
			found = true
		}
	}
	return earliest, found
}

// ExtractProgress parses the progress out of a log file. The last "X/Y"
// counter wins; if none is present the last "N%" value is used. Missing
// or unreadable logs report zero rather than failing the monitor.
func ExtractProgress(logFile string) float64 {
	data, err := os.ReadFile(logFile)
	if err != nil {
		return 0
	}
	content := string(data)

	if matches := fractionRe.FindAllStringSubmatch(content, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		current, err1 := strconv.Atoi(last[1])
		total, err2 := strconv.Atoi(last[2])
		if err1 == nil && err2 == nil && total > 0 {
			return float64(current) / float64(total) * 100
		}
		return 0
	}

	if matches := percentRe.FindAllStringSubmatch(content, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if pct, err := strconv.ParseFloat(last[1], 64); err == nil {
			return pct
		}
	}

	return 0
}

// Snapshot observes the logs directory once.
func Snapshot(logsDir string) Status {
	stage, latest, ok := LatestStage(logsDir)
	if !ok {
		return Status{Waiting: true}
	}

	st := Status{
		Stage:    stage,
		Progress: ExtractProgress(filepath.Join(logsDir, pipeline.LogFileName(stage))),
	}
	if start, found := FirstStageTime(logsDir); found {
		st.Elapsed = latest.Sub(start)
	}
	return st
}

// FormatElapsed renders a duration as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// barWidth matches the console width the monitor has always used.
const barWidth = 30

// RenderLine formats one status observation as a carriage-return progress
// line for the console.
func RenderLine(st Status) string {
	if st.Waiting {
		return "\r[WAITING] No logs detected yet..."
	}

	filled := int(barWidth * st.Progress / 100)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	return fmt.Sprintf("\r[%s] [%s] %.1f%% | Elapsed: %s",
		st.Stage, bar, st.Progress, FormatElapsed(st.Elapsed))
}
