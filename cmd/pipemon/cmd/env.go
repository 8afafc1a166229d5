package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark2-vision/pipemon/internal/envinfo"
)

var (
	envDir    string
	envOutput string
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Report the launch environment",
	Long: `Env reports what a launch would use without launching anything: venv
presence, the resolved Python interpreter and its version, and the host
hardware the reconstruction stages will run on.

Example:
  pipemon env
  pipemon env --dir /data/project -o yaml`,
	RunE: runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)

	envCmd.Flags().StringVar(&envDir, "dir", "", "launcher directory (default: directory containing the executable)")
	envCmd.Flags().StringVarP(&envOutput, "output", "o", "text", "output format: text, json, yaml")
}

func runEnv(cmd *cobra.Command, args []string) error {
	root := envDir
	if root == "" {
		if exe, err := os.Executable(); err == nil {
			root = filepath.Dir(exe)
		} else if cwd, err := os.Getwd(); err == nil {
			root = cwd
		}
	} else {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		root = abs
	}

	info := envinfo.Collect(cmd.Context(), root)

	switch envOutput {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
	default:
		printEnvText(info)
	}
	return nil
}

func printEnvText(info *envinfo.Info) {
	fmt.Printf("Launcher root: %s\n\n", info.Root)

	fmt.Println("Interpreter:")
	switch {
	case info.Interpreter.FromVenv:
		fmt.Printf("  venv:    %s\n", info.Interpreter.VenvDir)
	case info.Interpreter.VenvMissing:
		fmt.Println("  venv:    not found (system interpreter)")
	}
	if info.Interpreter.Path != "" {
		fmt.Printf("  path:    %s\n", info.Interpreter.Path)
	} else {
		fmt.Println("  path:    NOT FOUND")
	}
	if info.Interpreter.Version != "" {
		fmt.Printf("  version: %s\n", info.Interpreter.Version)
	}

	fmt.Println("\nHardware:")
	fmt.Printf("  cpu:     %s (%d threads)\n", info.Hardware.CPUModel, info.Hardware.CPUThreads)
	fmt.Printf("  ram:     %.1f GB total, %.1f GB free\n",
		float64(info.Hardware.RAMBytes)/(1024*1024*1024),
		float64(info.Hardware.RAMFreeBytes)/(1024*1024*1024))
	fmt.Printf("  system:  %s/%s\n", info.Hardware.OS, info.Hardware.Architecture)
}
