package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark2-vision/pipemon/internal/launcher"
	"github.com/mark2-vision/pipemon/internal/logwatch"
	"github.com/mark2-vision/pipemon/internal/metrics"
	"github.com/mark2-vision/pipemon/internal/shutdown"
)

var (
	watchLogsDir  string
	watchInterval time.Duration
	metricsPort   int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live progress view of a running pipeline",
	Long: `Watch polls the pipeline stage logs and renders a progress bar for the
stage that is currently writing, with elapsed time derived from log
timestamps. Optionally the same view is exposed as Prometheus metrics.

Example:
  pipemon watch --logs /data/project/logs
  pipemon watch --logs logs --interval 2s
  pipemon watch --logs logs --metrics-port 9510`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchLogsDir, "logs", "", "pipeline logs directory (default from config)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default from config, 1s)")
	watchCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "expose progress as Prometheus metrics on this port (0=off)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logsDir, err := resolveLogsDir()
	if err != nil {
		return err
	}

	interval := watchInterval
	if interval <= 0 {
		interval = viper.GetDuration("interval")
	}
	if interval <= 0 {
		interval = time.Second
	}

	mgr := shutdown.New(5 * time.Second)

	var exporter *metrics.Exporter
	var srvErr <-chan error
	if metricsPort > 0 {
		exporter = metrics.NewExporter()
		srv, errCh := exporter.Serve(fmt.Sprintf(":%d", metricsPort))
		srvErr = errCh
		mgr.Register(shutdown.StopHTTPServer(srv, "metrics"))
		fmt.Printf("Serving metrics on :%d/metrics\n", metricsPort)
	}

	fmt.Printf("Monitoring logs in: %s\nPress Ctrl+C to stop.\n\n", logsDir)

	// The manager owns signal handling; Done fires on Ctrl+C or when the
	// command context is cancelled, and the manager stops the metrics
	// listener on the way out.
	go mgr.WaitWithContext(cmd.Context())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st := logwatch.Snapshot(logsDir)
		fmt.Print(logwatch.RenderLine(st))
		if exporter != nil {
			exporter.Update(st)
		}

		select {
		case <-mgr.Done():
			fmt.Println("\nMonitoring stopped by user.")
			return nil
		case err, ok := <-srvErr:
			if ok && err != nil {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			srvErr = nil
		case <-ticker.C:
		}
	}
}

// resolveLogsDir picks the logs directory from the flag, then config, then
// an interactive prompt when the operator is at a terminal.
func resolveLogsDir() (string, error) {
	dir := watchLogsDir
	if dir == "" {
		dir = viper.GetString("logs_dir")
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}

	if !launcher.Interactive() {
		return "", fmt.Errorf("logs directory not found: %s", dir)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter path to logs directory: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("logs directory not found: %s", dir)
		}
		candidate := strings.Trim(strings.TrimSpace(line), `"`)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		fmt.Printf("Directory not found: %s\n", candidate)
	}
}
