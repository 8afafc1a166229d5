// Package pyenv locates Python interpreters and local virtual environments.
//
// Activation never mutates the launcher's own process environment: it
// produces an explicit environment slice that is handed to the child
// process, so nothing leaks past the launcher's lifetime.
package pyenv

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// VenvDirName is the fixed relative directory probed for under the
// launcher root.
const VenvDirName = "venv"

// Venv describes a detected virtual environment.
type Venv struct {
	Root         string // venv directory itself
	ActivatePath string // activation artifact that was found
	BinDir       string // Scripts (Windows layout) or bin (POSIX layout)
	Interpreter  string // interpreter executable inside BinDir
}

// Detect probes root/venv for an activation artifact. It checks the
// Windows layout (Scripts/activate) first, then the POSIX layout
// (bin/activate), mirroring the environments the pipeline ships on.
// Returns nil when no artifact is present.
func Detect(root string) *Venv {
	venvRoot := filepath.Join(root, VenvDirName)

	layouts := []struct {
		binDir string
		python string
	}{
		{"Scripts", "python.exe"},
		{"bin", "python"},
	}
	if runtime.GOOS != "windows" {
		// Prefer the native layout on the running platform
		layouts[0], layouts[1] = layouts[1], layouts[0]
	}

	for _, l := range layouts {
		activate := filepath.Join(venvRoot, l.binDir, "activate")
		if _, err := os.Stat(activate); err != nil {
			continue
		}
		binDir := filepath.Join(venvRoot, l.binDir)
		return &Venv{
			Root:         venvRoot,
			ActivatePath: activate,
			BinDir:       binDir,
			Interpreter:  filepath.Join(binDir, l.python),
		}
	}
	return nil
}

// Environ returns a copy of base with the venv activated: the venv bin
// directory is prepended to PATH, VIRTUAL_ENV is set, and PYTHONHOME is
// dropped. This is what `source activate` does, expressed as data.
func (v *Venv) Environ(base []string) []string {
	env := make([]string, 0, len(base)+2)
	pathSet := false

	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			env = append(env, kv)
			continue
		}
		switch {
		case strings.EqualFold(key, "PATH"):
			_, value, _ := strings.Cut(kv, "=")
			env = append(env, key+"="+v.BinDir+string(os.PathListSeparator)+value)
			pathSet = true
		case strings.EqualFold(key, "VIRTUAL_ENV"), strings.EqualFold(key, "PYTHONHOME"):
			// Replaced / dropped below
		default:
			env = append(env, kv)
		}
	}

	if !pathSet {
		env = append(env, "PATH="+v.BinDir)
	}
	env = append(env, "VIRTUAL_ENV="+v.Root)
	return env
}

// InterpreterPath returns the venv interpreter, verifying it exists.
func (v *Venv) InterpreterPath() (string, error) {
	if _, err := os.Stat(v.Interpreter); err != nil {
		return "", fmt.Errorf("venv interpreter not found at %s: %w", v.Interpreter, err)
	}
	return v.Interpreter, nil
}
