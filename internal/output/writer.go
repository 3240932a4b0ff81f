package output

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer persists brief artifacts into the output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// ArtifactPath returns where the brief for a given date lives, so other
// commands can check for it without rendering anything.
func ArtifactPath(dir, date, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("brief_%s.%s", date, ext))
}

// WriteMarkdown renders b into brief_<date>.md and returns the path.
func (w *Writer) WriteMarkdown(b Brief) (string, error) {
	return w.write(b, NewMarkdown(), "md")
}

// WriteJSON renders b into brief_<date>.json and returns the path.
func (w *Writer) WriteJSON(b Brief) (string, error) {
	return w.write(b, NewJSON(), "json")
}

func (w *Writer) write(b Brief, f Formatter, ext string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := ArtifactPath(w.dir, b.Date(), ext)

	var buf bytes.Buffer
	if err := f.Format(&buf, b); err != nil {
		return "", fmt.Errorf("format brief: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write brief: %w", err)
	}

	w.logger.Info("brief saved", "path", path)
	return path, nil
}
