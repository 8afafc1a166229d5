// Package analyze produces a post-hoc report from the pipeline stage logs:
// per-stage durations from embedded timestamps, error and warning counts,
// and the last observed progress value.
package analyze

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mark2-vision/pipemon/internal/logwatch"
	"github.com/mark2-vision/pipemon/internal/pipeline"
)

// timestampLayout matches the bracketed timestamps the stage loggers emit.
const timestampLayout = "2006-01-02 15:04:05"

var timestampRe = regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`)

// StageReport is the analysis of one stage log.
type StageReport struct {
	Stage     string        `json:"stage"`
	LogFile   string        `json:"log_file"`
	Lines     int           `json:"lines"`
	StartTime time.Time     `json:"start_time,omitzero"`
	EndTime   time.Time     `json:"end_time,omitzero"`
	Duration  time.Duration `json:"duration_ns"`
	Errors    int           `json:"errors"`
	Warnings  int           `json:"warnings"`
	Progress  float64       `json:"progress"`
}

// Report is the whole-pipeline analysis.
type Report struct {
	LogsDir       string        `json:"logs_dir"`
	Stages        []StageReport `json:"stages"`
	TotalDuration time.Duration `json:"total_duration_ns"`
	StagesSeen    int           `json:"stages_seen"`
	StagesFailed  int           `json:"stages_with_errors"`

	// Resume info from the pipeline checkpoint, when one exists.
	LastCompletedStep string `json:"last_completed_step,omitempty"`
	ResumeStep        string `json:"resume_step,omitempty"`
}

// Run analyzes every stage log found in logsDir, in pipeline order.
func Run(logsDir string) (*Report, error) {
	if info, err := os.Stat(logsDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("logs directory not found: %s", logsDir)
	}

	report := &Report{LogsDir: logsDir}

	var first, last time.Time
	for _, stage := range pipeline.Stages {
		path := filepath.Join(logsDir, pipeline.LogFileName(stage))
		if _, err := os.Stat(path); err != nil {
			continue
		}

		sr, err := analyzeStage(stage, path)
		if err != nil {
			return nil, err
		}
		report.Stages = append(report.Stages, sr)
		report.StagesSeen++
		if sr.Errors > 0 {
			report.StagesFailed++
		}

		if !sr.StartTime.IsZero() && (first.IsZero() || sr.StartTime.Before(first)) {
			first = sr.StartTime
		}
		if !sr.EndTime.IsZero() && sr.EndTime.After(last) {
			last = sr.EndTime
		}
	}

	if !first.IsZero() && !last.IsZero() {
		report.TotalDuration = last.Sub(first)
	}

	attachCheckpoint(report, logsDir)
	return report, nil
}

func analyzeStage(stage, path string) (StageReport, error) {
	sr := StageReport{
		Stage:    stage,
		LogFile:  filepath.Base(path),
		Progress: logwatch.ExtractProgress(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return sr, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		sr.Lines++

		if ts, ok := parseTimestamp(line); ok {
			if sr.StartTime.IsZero() {
				sr.StartTime = ts
			}
			sr.EndTime = ts
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, "ERROR"):
			sr.Errors++
		case strings.Contains(upper, "WARN"):
			sr.Warnings++
		}
	}
	if err := scanner.Err(); err != nil {
		return sr, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !sr.StartTime.IsZero() && !sr.EndTime.IsZero() {
		sr.Duration = sr.EndTime.Sub(sr.StartTime)
	}
	return sr, nil
}

func parseTimestamp(line string) (time.Time, bool) {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// attachCheckpoint is best effort: a missing or corrupt checkpoint file
// never fails the analysis.
func attachCheckpoint(report *Report, logsDir string) {
	if _, err := os.Stat(filepath.Join(logsDir, pipeline.CheckpointFileName)); err != nil {
		return
	}
	store := pipeline.NewCheckpointStore(logsDir)
	cp, err := store.Load()
	if err != nil {
		return
	}
	report.LastCompletedStep = cp.LastCompletedStep
	if resume, err := store.ResumeStep(); err == nil {
		report.ResumeStep = resume
	}
}
