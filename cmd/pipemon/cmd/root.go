package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pipemon",
	Short: "Launcher and monitor for the reconstruction pipeline",
	Long: `pipemon bootstraps the photogrammetry pipeline monitor: it activates a
local Python virtual environment when one is present, launches the monitor
entry point, and relays its exit status. It also ships a live progress
view, log analysis, and housekeeping for pipeline artifacts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pipemon/config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".pipemon/config" (without extension)
		viper.AddConfigPath(filepath.Join(home, ".pipemon"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("pipemon")
	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("entry", "monitor.py")
	viper.SetDefault("logs_dir", "logs")
	viper.SetDefault("interval", time.Second)

	// Missing config file is fine; everything has a default
	_ = viper.ReadInConfig()
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
