package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CheckpointFileName is the checkpoint file kept in the logs directory.
const CheckpointFileName = "pipeline_checkpoint.json"

// Checkpoint records pipeline progress so an interrupted run can resume.
// Set by stages as they complete, read once at startup.
type Checkpoint struct {
	LastCompletedStep string                     `json:"last_completed_step"`
	Outputs           map[string]json.RawMessage `json:"outputs"`
}

// CheckpointStore loads and saves the checkpoint file for one logs directory.
type CheckpointStore struct {
	path string
}

// NewCheckpointStore returns a store for <logsDir>/pipeline_checkpoint.json.
func NewCheckpointStore(logsDir string) *CheckpointStore {
	return &CheckpointStore{path: filepath.Join(logsDir, CheckpointFileName)}
}

// Path returns the checkpoint file location.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Initialize creates an empty checkpoint file if none exists.
func (s *CheckpointStore) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.Save(&Checkpoint{Outputs: make(map[string]json.RawMessage)})
}

// Load reads the checkpoint, initializing an empty one if missing.
func (s *CheckpointStore) Load() (*Checkpoint, error) {
	if err := s.Initialize(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", s.path, err)
	}
	if cp.Outputs == nil {
		cp.Outputs = make(map[string]json.RawMessage)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically (temp file + rename) so a crash
// mid-write never leaves a truncated checkpoint behind.
func (s *CheckpointStore) Save(cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Update records a completed step and its optional outputs.
// Unknown step names are rejected.
func (s *CheckpointStore) Update(step string, outputs json.RawMessage) error {
	if !IsStage(step) {
		return fmt.Errorf("unknown pipeline step: %s", step)
	}

	cp, err := s.Load()
	if err != nil {
		return err
	}

	cp.LastCompletedStep = step
	if outputs != nil {
		cp.Outputs[step] = outputs
	}
	return s.Save(cp)
}

// ResumeStep returns the step the pipeline should resume from.
// Empty string means the pipeline has already completed every stage.
func (s *CheckpointStore) ResumeStep() (string, error) {
	cp, err := s.Load()
	if err != nil {
		return "", err
	}

	if cp.LastCompletedStep == "" {
		return Stages[0], nil
	}

	idx := StageIndex(cp.LastCompletedStep)
	if idx < 0 {
		// Stage list changed since the checkpoint was written; start over.
		return Stages[0], nil
	}
	if idx+1 < len(Stages) {
		return Stages[idx+1], nil
	}
	return "", nil
}

// Output returns the recorded outputs for a step, or nil when absent.
func (s *CheckpointStore) Output(step string) (json.RawMessage, error) {
	cp, err := s.Load()
	if err != nil {
		return nil, err
	}
	return cp.Outputs[step], nil
}
