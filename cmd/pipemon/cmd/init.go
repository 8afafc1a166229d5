package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark2-vision/pipemon/internal/pipeline"
)

var (
	initDir   string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a pipeline project directory",
	Long: `Init creates the full project directory layout, a default config.yaml,
the project manifest, and an empty pipeline checkpoint. Existing files
are kept unless --force is given.

Example:
  pipemon init --dir /data/project
  pipemon init --dir /data/project --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDir, "dir", ".", "project directory to initialize")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
}

// projectConfig is the default pipeline configuration written on init.
type projectConfig struct {
	InputType    string `yaml:"input_type"`
	MatcherType  string `yaml:"matcher_type"`
	DenseQuality string `yaml:"dense_quality"`
}

// projectManifest records what init created.
type projectManifest struct {
	ProjectName string   `json:"project_name"`
	Created     string   `json:"created"`
	Root        string   `json:"root"`
	Paths       []string `json:"paths"`
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := pipeline.NewPaths(initDir)
	if err != nil {
		return err
	}
	if err := paths.EnsureAll(); err != nil {
		return err
	}

	configPath := filepath.Join(paths.Root, "config.yaml")
	if _, err := os.Stat(configPath); initForce || os.IsNotExist(err) {
		data, err := yaml.Marshal(projectConfig{
			InputType:    "images",
			MatcherType:  "sequential",
			DenseQuality: "medium",
		})
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write config.yaml: %w", err)
		}
	}

	manifest := projectManifest{
		ProjectName: filepath.Base(paths.Root),
		Created:     time.Now().UTC().Format(time.RFC3339),
		Root:        paths.Root,
	}
	for _, dir := range []string{
		paths.Raw, paths.Images, paths.ImagesFiltered, paths.ImagesProcessed,
		paths.Database, paths.Sparse, paths.Dense,
		paths.Mesh, paths.Textures, paths.Evaluation, paths.Visualization,
		paths.Logs, paths.Runs,
	} {
		rel, err := filepath.Rel(paths.Root, dir)
		if err != nil {
			return err
		}
		manifest.Paths = append(manifest.Paths, rel)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(paths.Root, "project.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write project.json: %w", err)
	}

	if err := pipeline.NewCheckpointStore(paths.Logs).Initialize(); err != nil {
		return err
	}

	fmt.Printf("Initialized project in %s\n", paths.Root)
	return nil
}
