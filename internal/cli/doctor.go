package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/cache"
	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/history"
	"github.com/ppiankov/dailybrief/internal/summarize"
)

const doctorPingTimeout = 10 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and dependencies",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true
	ctx := cmd.Context()

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s (run 'dailybrief init')", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "feeds.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "feeds.yaml (%d feeds)", len(cfg.Feeds))

	// Prompt template
	if _, err := os.Stat(cfg.Settings.PromptFile); err != nil {
		printInfo("prompt file %s missing, built-in template will be used", cfg.Settings.PromptFile)
	} else {
		printCheck(true, "prompt file %s", cfg.Settings.PromptFile)
	}

	// Output dir
	if err := checkWritable(cfg.Settings.OutputDir); err != nil {
		printCheck(false, "output dir %s: %v", cfg.Settings.OutputDir, err)
		ok = false
	} else {
		printCheck(true, "output dir %s", cfg.Settings.OutputDir)
	}

	// Cache snapshot
	snap := cache.NewStore(cfg.CachePath(), logger).Load()
	switch {
	case snap.CapturedAt.IsZero():
		printInfo("cache empty (no previous fetch)")
	case snap.Fresh(time.Now()):
		printCheck(true, "cache fresh (%d articles)", len(snap.Articles))
	default:
		printInfo("cache stale, captured %s", snap.CapturedAt.Format(time.RFC3339))
	}

	// Network
	if reachProbe(ctx) {
		printCheck(true, "network reachable")
	} else {
		printCheck(false, "network unreachable")
		ok = false
	}

	// Ollama server and model
	pingCtx, cancel := context.WithTimeout(ctx, doctorPingTimeout)
	defer cancel()
	svc := summarize.NewService(summarize.NewClient(cfg.Settings.OllamaHost), logger)
	if err := svc.Ping(pingCtx); err != nil {
		printCheck(false, "ollama at %s (start with: ollama serve)", cfg.Settings.OllamaHost)
		ok = false
	} else {
		printCheck(true, "ollama at %s", cfg.Settings.OllamaHost)
		want := cfg.Settings.SummaryModel
		switch model, err := svc.ResolveModel(pingCtx, want); {
		case err != nil:
			printCheck(false, "model %s: %v", want, err)
			ok = false
		case strings.TrimSuffix(model, ":latest") != strings.TrimSuffix(want, ":latest"):
			printInfo("model %s missing, runs would fall back to %s", want, model)
		default:
			printCheck(true, "model %s", model)
		}
	}

	// History database
	db, err := history.Open(cfg.Settings.HistoryFile)
	if err != nil {
		printCheck(false, "history db: %v", err)
		ok = false
	} else {
		_ = db.Close()
		printCheck(true, "history db %s", cfg.Settings.HistoryFile)
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// checkWritable verifies the directory exists (creating it if needed)
// and accepts a test file.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
