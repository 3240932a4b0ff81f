// Package cli provides the command-line interface for dailybrief.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/logging"
	"github.com/ppiankov/dailybrief/internal/pipeline"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	configDir string
	logLevel  string
	logFile   string
	noColor   bool
)

// logger is rebuilt from the persistent flags before every command;
// the default keeps directly-invoked actions quiet in tests.
var (
	logger   = slog.New(slog.DiscardHandler)
	closeLog = func() error { return nil }
)

// reachProbe gates network access for run, fetch, doctor, and notify.
var reachProbe = pipeline.DefaultProber

var rootCmd = &cobra.Command{
	Use:   "dailybrief",
	Short: "Aggregate tech feeds into an AI-summarized daily brief",
	Long:  "dailybrief fetches configured RSS feeds, deduplicates and ranks the articles, asks a local Ollama model for a summary, and writes Markdown and JSON briefs.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		logger, closeLog, err = logging.New(logLevel, logFile)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("dailybrief %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", config.DefaultDir(), "config directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "mirror logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = closeLog() }()
	return rootCmd.Execute()
}
