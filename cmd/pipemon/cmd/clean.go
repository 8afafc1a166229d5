package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark2-vision/pipemon/internal/cleanup"
	"github.com/mark2-vision/pipemon/internal/pipeline"
)

var (
	cleanDir    string
	cleanMaxAge time.Duration
	cleanDryRun bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Prune old runs and rotated launcher logs",
	Long: `Clean removes finished run directories and rotated launcher log backups
older than the retention window. Unfinished runs and live logs are never
touched.

Example:
  pipemon clean --dir /data/project
  pipemon clean --dir /data/project --max-age 168h --dry-run`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanDir, "dir", ".", "project directory containing logs/ and runs/")
	cleanCmd.Flags().DurationVar(&cleanMaxAge, "max-age", 7*24*time.Hour, "retention window for finished artifacts")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "report what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	paths, err := pipeline.NewPaths(cleanDir)
	if err != nil {
		return err
	}

	sweeper := cleanup.New(
		cleanup.Config{MaxAge: cleanMaxAge, DryRun: cleanDryRun},
		paths.Logs,
		paths.Runs,
	)

	stats, err := sweeper.Sweep(time.Now())
	if err != nil {
		return err
	}

	verb := "Removed"
	if cleanDryRun {
		verb = "Would remove"
	}
	for _, path := range stats.Removed {
		fmt.Printf("%s %s\n", verb, path)
	}
	fmt.Printf("%s %d run(s), %d log backup(s), %.1f MB\n",
		verb, stats.RunsRemoved, stats.BackupsRemoved, float64(stats.BytesFreed)/(1024*1024))
	return nil
}
