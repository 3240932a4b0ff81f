package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store archives completed runs in a sqlite database. Recording is
// best-effort at the call sites; the store itself reports errors.
type Store struct {
	db *sql.DB
}

// Run is one archived pipeline run.
type Run struct {
	ID           int64
	Date         string
	GeneratedAt  time.Time
	Model        string
	Outcome      string
	Fetched      int
	Summarized   int
	SummaryChars int
}

// RunInput is the record for one completed run.
type RunInput struct {
	Date         string
	GeneratedAt  time.Time
	Model        string
	Outcome      string
	Fetched      int
	Summarized   int
	SummaryChars int
	Sources      []SourceCount
}

// SourceCount is one source's article contribution to a run.
type SourceCount struct {
	Source   string
	Articles int
}

// SourceStats holds per-source aggregates across runs.
type SourceStats struct {
	Source   string
	Articles int
	Runs     int
	LastSeen time.Time
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts a run row and its per-source counts.
func (s *Store) RecordRun(ctx context.Context, in RunInput) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(in.Date) == "" {
		return 0, errors.New("date is required")
	}
	if in.GeneratedAt.IsZero() {
		return 0, errors.New("generated_at is required")
	}
	if strings.TrimSpace(in.Outcome) == "" {
		return 0, errors.New("outcome is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_date, generated_at, model, outcome, fetched, summarized, summary_chars)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		in.Date,
		formatTime(in.GeneratedAt),
		in.Model,
		in.Outcome,
		in.Fetched,
		in.Summarized,
		in.SummaryChars,
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, src := range in.Sources {
		if strings.TrimSpace(src.Source) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_sources (run_id, source, articles) VALUES (?, ?, ?)
			ON CONFLICT(run_id, source) DO UPDATE SET articles = articles + excluded.articles
		`, runID, src.Source, src.Articles); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert run source: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	return runID, nil
}

// RecentRuns returns the newest runs first, at most limit of them.
func (s *Store) RecentRuns(ctx context.Context, since time.Time, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_date, generated_at, model, outcome, fetched, summarized, summary_chars
		FROM runs
		WHERE generated_at >= ?
		ORDER BY generated_at DESC
		LIMIT ?
	`, formatTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			generatedAt string
		)
		if err := rows.Scan(&r.ID, &r.Date, &generatedAt, &r.Model, &r.Outcome, &r.Fetched, &r.Summarized, &r.SummaryChars); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.GeneratedAt, err = parseTime(generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse generated_at: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetSourceStats returns per-source aggregates for runs since the given time.
func (s *Store) GetSourceStats(ctx context.Context, since time.Time) ([]SourceStats, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rs.source,
			SUM(rs.articles) AS articles,
			COUNT(DISTINCT rs.run_id) AS runs,
			MAX(r.generated_at) AS last_seen
		FROM run_sources rs
		JOIN runs r ON r.id = rs.run_id
		WHERE r.generated_at >= ?
		GROUP BY rs.source
		ORDER BY articles DESC, rs.source
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("get source stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []SourceStats
	for rows.Next() {
		var (
			st       SourceStats
			lastSeen string
		)
		if err := rows.Scan(&st.Source, &st.Articles, &st.Runs, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		st.LastSeen, err = parseTime(lastSeen)
		if err != nil {
			return nil, fmt.Errorf("parse last_seen: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source stats: %w", err)
	}

	return stats, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Time{}.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
