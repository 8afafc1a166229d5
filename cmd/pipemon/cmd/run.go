package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark2-vision/pipemon/internal/launcher"
	"github.com/mark2-vision/pipemon/internal/logging"
	"github.com/mark2-vision/pipemon/internal/pipeline"
	"github.com/mark2-vision/pipemon/internal/pyenv"
	"github.com/mark2-vision/pipemon/internal/runhist"
)

var (
	runDir   string
	runEntry string
	noPause  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the pipeline monitor entry point",
	Long: `Run bootstraps the pipeline monitor: it resolves the launcher directory,
activates the local virtual environment if one is present, starts the
monitor entry point with no arguments, and relays its exit status.

On a non-zero exit the launcher reports the code and waits for a single
acknowledgment before exiting, so a double-click console stays open long
enough to read the failure.

Example:
  pipemon run
  pipemon run --dir /data/project --entry monitor.py
  pipemon run --no-pause`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDir, "dir", "", "launcher directory (default: directory containing the executable)")
	runCmd.Flags().StringVar(&runEntry, "entry", "", "entry-point file to launch (default from config, monitor.py)")
	runCmd.Flags().BoolVar(&noPause, "no-pause", false, "do not wait for acknowledgment after a failure")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	root, err := launcherRoot()
	if err != nil {
		return err
	}

	paths, err := pipeline.NewPaths(root)
	if err != nil {
		return err
	}

	entry := runEntry
	if entry == "" {
		entry = viper.GetString("entry")
	}

	fmt.Printf("╔════════════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║ Pipeline Launcher                                              ║\n")
	fmt.Printf("╚════════════════════════════════════════════════════════════════╝\n")

	// Launcher diagnostics go to a file, never the console: the console
	// belongs to the banner, the notices, and the child's own output.
	logger, err := logging.NewFileLogger(paths.Logs, "launcher", logging.INFO, false, false)
	if err == nil {
		defer logger.Close()
	} else {
		logger = logging.NewLogger(logging.ERROR, false)
		logger.SetOutput(os.Stderr)
	}
	logger.Info("launcher starting", map[string]interface{}{"root": root, "entry": entry})

	interp, env := resolveInterpreter(cmd.Context(), root, logger)
	if interp == "" {
		fmt.Println("No Python interpreter found. Install Python or create a venv.")
		return pyenv.ErrNoInterpreter
	}

	// Best-effort run bookkeeping; a failed manifest never blocks a launch
	runs := runhist.NewManager(paths.Runs)
	if _, err := runs.Start(entry); err != nil {
		logger.Warn("failed to record run start", map[string]interface{}{"error": err.Error()})
		runs = nil
	}

	result, err := launcher.Run(cmd.Context(), launcher.Spec{
		Interpreter: interp,
		Entry:       entry,
		Dir:         root,
		Env:         env,
	})
	if err != nil {
		if runs != nil {
			runs.Finish(1)
		}
		return err
	}

	logger.Info("pipeline finished", map[string]interface{}{
		"exit_code": result.ExitCode,
		"pid":       result.PID,
		"duration":  result.Duration.String(),
	})
	if runs != nil {
		if err := runs.Finish(result.ExitCode); err != nil {
			logger.Warn("failed to record run end", map[string]interface{}{"error": err.Error()})
		}
	}

	if result.Success() {
		return nil
	}

	fmt.Printf("\nPipeline failed with error code: %d\n", result.ExitCode)
	if !noPause && launcher.Interactive() {
		launcher.WaitForAck(os.Stdin, os.Stdout)
	}
	return &launcher.ExitError{Code: result.ExitCode}
}

// launcherRoot resolves the directory all relative lookups are anchored
// to, so behavior does not depend on where the operator invoked us from.
func launcherRoot() (string, error) {
	if runDir != "" {
		return filepath.Abs(runDir)
	}
	exe, err := os.Executable()
	if err == nil {
		return filepath.Dir(exe), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher directory: %w", err)
	}
	return cwd, nil
}

// resolveInterpreter picks the venv interpreter when an activation
// artifact exists, otherwise the system one. An unusable venv falls
// through to the system path with the same notice as a missing one.
func resolveInterpreter(ctx context.Context, root string, logger *logging.Logger) (string, []string) {
	if venv := pyenv.Detect(root); venv != nil {
		if interp, err := venv.InterpreterPath(); err == nil {
			env := venv.Environ(os.Environ())
			fmt.Println("Activating virtual environment...")
			if version, err := pyenv.Version(ctx, interp, env); err == nil {
				fmt.Println(version)
			}
			logger.Info("venv activated", map[string]interface{}{"venv": venv.Root})
			return interp, env
		}
		logger.Warn("venv present but unusable, falling back to system interpreter")
	}

	fmt.Println("Virtual environment not found, using system Python.")
	interp, err := pyenv.ResolveSystem()
	if err != nil {
		logger.Error("no interpreter on PATH")
		return "", nil
	}
	logger.Info("using system interpreter", map[string]interface{}{"path": interp})
	return interp, nil
}
