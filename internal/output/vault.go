package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SyncToVault copies artifact files into the vault directory, creating
// it if needed. Per-file failures are logged; the sync never fails the
// run.
func SyncToVault(vaultPath string, files []string, logger *slog.Logger) {
	if err := os.MkdirAll(vaultPath, 0o755); err != nil {
		logger.Warn("could not create vault dir", "path", vaultPath, "error", err)
		return
	}

	for _, src := range files {
		if src == "" {
			continue
		}
		dst := filepath.Join(vaultPath, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			logger.Warn("vault sync failed", "file", src, "error", err)
			continue
		}
		logger.Info("synced to vault", "path", dst)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
