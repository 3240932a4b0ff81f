package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
)

func writeNotifyConfig(t *testing.T, dir string) {
	t.Helper()

	cfgYAML := fmt.Sprintf(`settings:
  output_dir: %q
  history_file: %q
  email:
    enabled: true
    to: "ops@example.com"

feeds:
  - name: "Feed A"
    url: "https://example.com/feed"
`, filepath.Join(dir, "output"), filepath.Join(dir, "history.db"))

	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestNotifyDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	writeBriefConfig(t, tmpDir, "https://example.com/feed")
	setupCLITest(t, tmpDir)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := captureStdout(t, func() error {
		return notifyAction(cmd, nil)
	})
	if err == nil {
		t.Fatal("expected error when email is disabled")
	}
	requireContains(t, err.Error(), "disabled in feeds.yaml")
}

func TestNotifyOfflineSkipsSend(t *testing.T) {
	tmpDir := t.TempDir()
	writeNotifyConfig(t, tmpDir)
	setupCLITest(t, tmpDir)
	reachProbe = func(context.Context) bool { return false }

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	out, err := captureStdout(t, func() error {
		return notifyAction(cmd, nil)
	})
	if err != nil {
		t.Fatalf("notify action: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output when offline, got %q", out)
	}
}

func TestNotifyMissingCredentials(t *testing.T) {
	tmpDir := t.TempDir()
	writeNotifyConfig(t, tmpDir)
	setupCLITest(t, tmpDir)
	t.Setenv("DAILYBRIEF_SMTP_USER", "")
	t.Setenv("DAILYBRIEF_SMTP_PASS", "")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := captureStdout(t, func() error {
		return notifyAction(cmd, nil)
	})
	if err == nil {
		t.Fatal("expected error without SMTP credentials")
	}
	requireContains(t, err.Error(), "send notification:")
	requireContains(t, err.Error(), "DAILYBRIEF_SMTP_USER")
}
