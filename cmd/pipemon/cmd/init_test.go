package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mark2-vision/pipemon/internal/pipeline"
)

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	initDir = dir
	defer func() { initDir = "." }()

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, sub := range []string{"raw", "images", "sparse", "dense", "logs", "runs"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("init should create %s/: %v", sub, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.yaml should exist: %v", err)
	}
	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config.yaml should be valid YAML: %v", err)
	}
	if cfg.MatcherType != "sequential" {
		t.Errorf("Default matcher type: got %q, want sequential", cfg.MatcherType)
	}

	if _, err := os.Stat(filepath.Join(dir, "project.json")); err != nil {
		t.Errorf("project.json should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs", pipeline.CheckpointFileName)); err != nil {
		t.Errorf("Checkpoint should be initialized: %v", err)
	}
}

func TestRunInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	initDir = dir
	defer func() { initDir = "." }()

	custom := []byte("input_type: video\nmatcher_type: exhaustive\ndense_quality: high\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), custom, 0644); err != nil {
		t.Fatal(err)
	}

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if string(data) != string(custom) {
		t.Error("init without --force must not overwrite config.yaml")
	}
}
