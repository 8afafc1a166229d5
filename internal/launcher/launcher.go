// Package launcher runs the pipeline entry point as a child process and
// relays its exit status. The launcher never recovers or retries: a child
// failure is surfaced verbatim so the operator sees the real code.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Spec describes one child invocation. The entry point is always invoked
// with zero arguments; anything the child needs comes through Env.
type Spec struct {
	Interpreter string   // resolved python executable
	Entry       string   // entry-point file, e.g. monitor.py
	Dir         string   // working directory for the child
	Env         []string // explicit child environment; nil inherits the parent's

	// Stdout and Stderr default to the launcher's own streams so the
	// child's console output passes through untouched.
	Stdout io.Writer
	Stderr io.Writer
}

// Run invokes the entry point and blocks until it finishes.
//
// A non-zero child exit is NOT an error here: it is a normal outcome
// recorded in the Result. The returned error covers only failures to
// start the child at all.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Interpreter == "" {
		return nil, errors.New("no interpreter configured")
	}
	if _, err := os.Stat(entryPath(spec)); err != nil {
		return nil, fmt.Errorf("entry point %s not found: %w", spec.Entry, err)
	}

	cmd := exec.CommandContext(ctx, spec.Interpreter, spec.Entry)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env

	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Stdin = os.Stdin

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Entry, err)
	}
	pid := cmd.Process.Pid

	err := cmd.Wait()
	end := time.Now()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed waiting for %s: %w", spec.Entry, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		PID:       pid,
		ExitCode:  exitCode,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}, nil
}

func entryPath(spec Spec) string {
	if spec.Dir == "" || filepath.IsAbs(spec.Entry) {
		return spec.Entry
	}
	return filepath.Join(spec.Dir, spec.Entry)
}
