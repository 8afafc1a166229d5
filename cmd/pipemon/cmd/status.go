package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark2-vision/pipemon/internal/analyze"
	"github.com/mark2-vision/pipemon/internal/logwatch"
	"github.com/mark2-vision/pipemon/internal/runhist"
)

var (
	statusLogsDir string
	statusRunsDir string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Analyze pipeline logs and show run history",
	Long: `Status reads every stage log once and reports durations, error and
warning counts, and progress per stage, together with the checkpoint
resume point and recorded launcher runs.

Example:
  pipemon status --logs /data/project/logs
  pipemon status --logs logs --runs runs --output json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusLogsDir, "logs", "", "pipeline logs directory (default from config)")
	statusCmd.Flags().StringVar(&statusRunsDir, "runs", "", "runs directory with launcher manifests (optional)")
}

type statusReport struct {
	*analyze.Report
	Runs []runhist.Manifest `json:"runs,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	logsDir := statusLogsDir
	if logsDir == "" {
		logsDir = viper.GetString("logs_dir")
	}

	report, err := analyze.Run(logsDir)
	if err != nil {
		return err
	}

	full := statusReport{Report: report}
	if statusRunsDir != "" {
		runs, err := runhist.NewManager(statusRunsDir).List()
		if err != nil {
			return err
		}
		full.Runs = runs
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(full, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	printStatusTables(full)
	return nil
}

func printStatusTables(full statusReport) {
	if full.StagesSeen == 0 {
		fmt.Println("No stage logs found")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Stage", "Duration", "Progress", "Lines", "Errors", "Warnings")

		for _, sr := range full.Stages {
			duration := "-"
			if sr.Duration > 0 {
				duration = logwatch.FormatElapsed(sr.Duration)
			}
			table.Append(
				sr.Stage,
				duration,
				fmt.Sprintf("%.1f%%", sr.Progress),
				fmt.Sprintf("%d", sr.Lines),
				fmt.Sprintf("%d", sr.Errors),
				fmt.Sprintf("%d", sr.Warnings),
			)
		}

		table.Render()
		fmt.Printf("\nStages seen: %d | with errors: %d | total time: %s\n",
			full.StagesSeen, full.StagesFailed, logwatch.FormatElapsed(full.TotalDuration))
	}

	if full.LastCompletedStep != "" {
		if full.ResumeStep == "" {
			fmt.Printf("Checkpoint: %s completed, pipeline finished\n", full.LastCompletedStep)
		} else {
			fmt.Printf("Checkpoint: %s completed, resume from %s\n", full.LastCompletedStep, full.ResumeStep)
		}
	}

	if len(full.Runs) > 0 {
		fmt.Println()
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Run", "Started", "Entry", "Result")

		for _, run := range full.Runs {
			result := "running"
			if run.Finished {
				result = fmt.Sprintf("exit %d", run.ExitCode)
				if run.Success {
					result = "ok"
				}
			}
			table.Append(
				run.RunID,
				run.StartTime.Format("2006-01-02 15:04:05"),
				run.Entry,
				result,
			)
		}

		table.Render()
		fmt.Printf("\nTotal runs: %d\n", len(full.Runs))
	}
}
