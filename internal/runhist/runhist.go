// Package runhist keeps project-scoped run manifests under
// <project>/runs/<run_id>/manifest.json so operators can see what was
// launched, when, and whether it succeeded.
package runhist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ManifestFileName is the manifest kept inside each run directory.
const ManifestFileName = "manifest.json"

// ErrRunActive is returned when a run is started while one is in flight.
var ErrRunActive = errors.New("a run is already active")

// Manifest records one launcher invocation.
type Manifest struct {
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitzero"`
	Entry     string    `json:"entry"`
	Success   bool      `json:"success"`
	ExitCode  int       `json:"exit_code"`
	Finished  bool      `json:"finished"`
}

// Manager creates and finalizes runs. One run may be active at a time.
type Manager struct {
	runsDir string
	active  *Manifest
}

// NewManager returns a manager over the given runs directory.
func NewManager(runsDir string) *Manager {
	return &Manager{runsDir: runsDir}
}

// Start opens a new run directory and writes its initial manifest.
func (m *Manager) Start(entry string) (*Manifest, error) {
	if m.active != nil {
		return nil, ErrRunActive
	}

	now := time.Now()
	run := &Manifest{
		RunID:     now.Format("20060102-150405"),
		StartTime: now,
		Entry:     entry,
	}

	dir := filepath.Join(m.runsDir, run.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	if err := writeManifest(dir, run); err != nil {
		return nil, err
	}

	m.active = run
	return run, nil
}

// Finish finalizes the active run with the child's exit code.
func (m *Manager) Finish(exitCode int) error {
	if m.active == nil {
		return errors.New("no active run")
	}

	run := m.active
	run.EndTime = time.Now()
	run.ExitCode = exitCode
	run.Success = exitCode == 0
	run.Finished = true
	m.active = nil

	return writeManifest(filepath.Join(m.runsDir, run.RunID), run)
}

// List returns all recorded runs, newest first. A missing runs directory
// is an empty history, not an error.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.runsDir, e.Name(), ManifestFileName))
		if err != nil {
			continue // run dir without a manifest, skip
		}
		var run Manifest
		if err := json.Unmarshal(data, &run); err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

func writeManifest(dir string, run *Manifest) error {
	data, err := json.MarshalIndent(run, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace run manifest: %w", err)
	}
	return nil
}
