package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/notify"
	"github.com/ppiankov/dailybrief/internal/output"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Email the status of today's brief",
	RunE:  notifyAction,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func notifyAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Settings.Email.Enabled {
		return errors.New("email notifications are disabled in feeds.yaml")
	}

	if !reachProbe(cmd.Context()) {
		logger.Warn("network unreachable, skipping notification")
		return nil
	}

	date := time.Now().Format("2006-01-02")
	st := notify.Status{
		Date:            date,
		VaultConfigured: cfg.Settings.VaultSync.Enabled,
		LogPath:         logFile,
	}

	briefPath := output.ArtifactPath(cfg.Settings.OutputDir, date, "md")
	if _, err := os.Stat(briefPath); err == nil {
		st.BriefPath = briefPath
	}
	if st.VaultConfigured {
		vaultPath := output.ArtifactPath(cfg.Settings.VaultSync.VaultPath, date, "md")
		if _, err := os.Stat(vaultPath); err == nil {
			st.VaultBriefPath = vaultPath
		}
	}

	if err := notify.NewMailer(cfg.Settings.Email, logger).Send(st); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	fmt.Printf("Notification sent to %s\n", cfg.Settings.Email.To)
	return nil
}
