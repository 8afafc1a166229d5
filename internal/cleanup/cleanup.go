// Package cleanup prunes pipeline artifacts that retention has expired:
// finished run directories and rotated launcher log backups. Active runs
// and the live stage logs are never touched.
package cleanup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark2-vision/pipemon/internal/runhist"
)

// Config defines retention policy for a sweep.
type Config struct {
	MaxAge time.Duration // artifacts older than this are pruned
	DryRun bool          // report without deleting
}

// DefaultConfig returns sensible retention defaults.
func DefaultConfig() Config {
	return Config{MaxAge: 7 * 24 * time.Hour}
}

// Stats tracks what a sweep did (or would do, under DryRun).
type Stats struct {
	RunsRemoved    int      `json:"runs_removed"`
	BackupsRemoved int      `json:"backups_removed"`
	BytesFreed     int64    `json:"bytes_freed"`
	Removed        []string `json:"removed,omitempty"`
}

// Sweeper prunes old artifacts under one project.
type Sweeper struct {
	config  Config
	logsDir string
	runsDir string
}

// New creates a sweeper for the given logs and runs directories.
func New(config Config, logsDir, runsDir string) *Sweeper {
	return &Sweeper{config: config, logsDir: logsDir, runsDir: runsDir}
}

// Sweep runs one cleanup pass.
func (s *Sweeper) Sweep(now time.Time) (*Stats, error) {
	stats := &Stats{}
	cutoff := now.Add(-s.config.MaxAge)

	if err := s.sweepRuns(cutoff, stats); err != nil {
		return stats, err
	}
	if err := s.sweepLogBackups(cutoff, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// sweepRuns removes finished run directories whose run ended before the
// cutoff. Unfinished or unreadable runs are left alone.
func (s *Sweeper) sweepRuns(cutoff time.Time, stats *Stats) error {
	entries, err := os.ReadDir(s.runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read runs directory: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.runsDir, e.Name())

		data, err := os.ReadFile(filepath.Join(dir, runhist.ManifestFileName))
		if err != nil {
			continue
		}
		var run runhist.Manifest
		if err := json.Unmarshal(data, &run); err != nil {
			continue
		}
		if !run.Finished || run.EndTime.After(cutoff) {
			continue
		}

		size := dirSize(dir)
		if !s.config.DryRun {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove run %s: %w", run.RunID, err)
			}
		}
		stats.RunsRemoved++
		stats.BytesFreed += size
		stats.Removed = append(stats.Removed, dir)
	}
	return nil
}

// sweepLogBackups removes rotated launcher logs (name.log.<timestamp>)
// older than the cutoff.
func (s *Sweeper) sweepLogBackups(cutoff time.Time, stats *Stats) error {
	dir := filepath.Join(s.logsDir, "pipemon")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isRotatedLog(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		if !s.config.DryRun {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
		stats.BackupsRemoved++
		stats.BytesFreed += info.Size()
		stats.Removed = append(stats.Removed, path)
	}
	return nil
}

// isRotatedLog matches names like launcher.log.20260301-100000 but not the
// live launcher.log itself.
func isRotatedLog(name string) bool {
	idx := strings.Index(name, ".log.")
	return idx > 0 && idx+len(".log.") < len(name)
}

func dirSize(dir string) int64 {
	var size int64
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
