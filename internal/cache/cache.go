package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/dailybrief/internal/feed"
)

// FreshWindow is how long a snapshot satisfies a run without refetching.
const FreshWindow = time.Hour

// timestampLayouts accepts our own RFC3339 output plus the zoneless
// ISO form older cache files carry.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Snapshot is the outcome of one completed fetch: the filtered articles
// plus when they were captured. A zero CapturedAt means the timestamp
// was absent or unreadable; the articles still serve as offline fallback.
type Snapshot struct {
	Articles   []feed.Item
	CapturedAt time.Time
}

// Fresh reports whether the snapshot was captured within FreshWindow of now.
func (s Snapshot) Fresh(now time.Time) bool {
	if s.CapturedAt.IsZero() {
		return false
	}
	return now.Sub(s.CapturedAt) < FreshWindow
}

type record struct {
	Articles  []feed.Item `json:"articles"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// Store reads and writes the article cache file. Concurrent runs race
// benignly: each writes a complete temp file and renames it into place,
// so the last writer wins and a reader never sees a partial file.
type Store struct {
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the previous snapshot. A missing, unreadable, or corrupt
// cache degrades to an empty snapshot; it never fails the run.
func (s *Store) Load() Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read cache", "path", s.path, "error", err)
		}
		return Snapshot{}
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("could not parse cache", "path", s.path, "error", err)
		return Snapshot{}
	}

	snap := Snapshot{Articles: rec.Articles}
	if rec.Timestamp != "" {
		ts, err := parseTimestamp(rec.Timestamp)
		if err != nil {
			s.logger.Warn("cache timestamp unreadable, treating as stale", "timestamp", rec.Timestamp)
		} else {
			snap.CapturedAt = ts
		}
	}

	s.logger.Info("loaded cache", "articles", len(snap.Articles), "captured_at", rec.Timestamp)
	return snap
}

// Save writes a snapshot of items captured at now. The write goes to a
// temp file in the cache directory first and is renamed over the final
// path, so an interrupted run cannot leave a truncated cache behind.
func (s *Store) Save(items []feed.Item, now time.Time) error {
	if items == nil {
		items = []feed.Item{}
	}
	rec := record{
		Articles:  items,
		Timestamp: now.Format(time.RFC3339Nano),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace cache: %w", err)
	}

	s.logger.Info("saved cache", "articles", len(items), "path", s.path)
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
