package pyenv

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrNoInterpreter is returned when no Python interpreter can be resolved
// on the system search path.
var ErrNoInterpreter = errors.New("no python interpreter found on PATH")

// systemCandidates are tried in order when no venv is active.
var systemCandidates = []string{"python3", "python"}

// ResolveSystem finds the system Python interpreter on PATH.
func ResolveSystem() (string, error) {
	for _, name := range systemCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoInterpreter
}

// Version runs `<interpreter> --version` and returns the trimmed version
// string (e.g. "Python 3.11.4"). Old interpreters print the version on
// stderr, so both streams are captured.
func Version(ctx context.Context, interpreter string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, interpreter, "--version")
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
