package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the central registry of project-relative directories.
// No component builds project paths by hand; everything goes through here
// so that resume and tooling agree on the layout.
type Paths struct {
	Root string

	// Input and preprocessing
	Raw             string
	Images          string
	ImagesFiltered  string
	ImagesProcessed string

	// Reconstruction
	Database string
	Sparse   string
	Dense    string

	// Outputs
	Mesh          string
	Textures      string
	Evaluation    string
	Visualization string

	// Metadata and logs
	Logs string
	Runs string
}

// NewPaths builds the registry rooted at the given project directory.
// The root is resolved to an absolute path so behavior does not depend on
// the caller's working directory.
func NewPaths(root string) (*Paths, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}

	return &Paths{
		Root:            abs,
		Raw:             filepath.Join(abs, "raw"),
		Images:          filepath.Join(abs, "images"),
		ImagesFiltered:  filepath.Join(abs, "images_filtered"),
		ImagesProcessed: filepath.Join(abs, "images_processed"),
		Database:        filepath.Join(abs, "database"),
		Sparse:          filepath.Join(abs, "sparse"),
		Dense:           filepath.Join(abs, "dense"),
		Mesh:            filepath.Join(abs, "mesh"),
		Textures:        filepath.Join(abs, "textures"),
		Evaluation:      filepath.Join(abs, "evaluation"),
		Visualization:   filepath.Join(abs, "visualization"),
		Logs:            filepath.Join(abs, "logs"),
		Runs:            filepath.Join(abs, "runs"),
	}, nil
}

// EnsureAll creates every registered directory.
func (p *Paths) EnsureAll() error {
	for _, dir := range p.all() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// StageLog returns the absolute path of a stage's log file.
func (p *Paths) StageLog(stage string) string {
	return filepath.Join(p.Logs, LogFileName(stage))
}

func (p *Paths) all() []string {
	return []string{
		p.Raw, p.Images, p.ImagesFiltered, p.ImagesProcessed,
		p.Database, p.Sparse, p.Dense,
		p.Mesh, p.Textures, p.Evaluation, p.Visualization,
		p.Logs, p.Runs,
	}
}
