package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/dailybrief/internal/cache"
	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/feed"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func probeUp(context.Context) bool   { return true }
func probeDown(context.Context) bool { return false }

func rssBody(items ...string) string {
	body := ""
	for _, it := range items {
		body += it
	}
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
%s  </channel>
</rss>`, body)
}

func rssEntry(title, link, pubDate string) string {
	e := fmt.Sprintf("    <item>\n      <title>%s</title>\n      <link>%s</link>\n", title, link)
	if pubDate != "" {
		e += fmt.Sprintf("      <pubDate>%s</pubDate>\n", pubDate)
	}
	return e + "    </item>\n"
}

func testConfig(feeds ...config.Feed) *config.Config {
	cfg := &config.Config{Feeds: feeds}
	cfg.Settings.FilterHours = 48
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config, probe Prober, now time.Time) (*Pipeline, *cache.Store) {
	t.Helper()
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"), testLogger())
	p := New(cfg, feed.NewFetcher(testLogger()), store, probe, testLogger())
	p.now = func() time.Time { return now }
	return p, store
}

func TestRun_FreshCacheShortCircuits(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, rssBody())
	}))
	defer ts.Close()

	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})

	probeCalled := false
	probe := func(context.Context) bool { probeCalled = true; return true }

	p, store := newTestPipeline(t, cfg, probe, now)
	cached := []feed.Item{{Title: "Cached story", Link: "https://example.com/c", Hash: "h1"}}
	if err := store.Save(cached, now.Add(-10*time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	res := p.Run(context.Background())

	if res.Outcome != OutcomeCached {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeCached)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Cached story" {
		t.Errorf("items = %+v, want the cached article", res.Items)
	}
	if probeCalled {
		t.Error("probe ran despite fresh cache")
	}
	if requests.Load() != 0 {
		t.Errorf("feed fetched %d times despite fresh cache", requests.Load())
	}
}

func TestRun_FreshButEmptyCacheRefetches(t *testing.T) {
	pub := time.Now().Format(time.RFC1123Z)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("Fresh story", "https://example.com/f", pub)))
	}))
	defer ts.Close()

	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})
	p, store := newTestPipeline(t, cfg, probeUp, now)

	// A fresh snapshot with zero articles must not satisfy the run.
	if err := store.Save(nil, now.Add(-time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	res := p.Run(context.Background())

	if res.Outcome != OutcomeFetched {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeFetched)
	}
	if len(res.Items) != 1 {
		t.Errorf("items = %d, want 1 refetched article", len(res.Items))
	}
}

func TestRun_SkipCacheForcesRefetch(t *testing.T) {
	pub := time.Now().Format(time.RFC1123Z)
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, rssBody(rssEntry("Live story", "https://example.com/l", pub)))
	}))
	defer ts.Close()

	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})
	p, store := newTestPipeline(t, cfg, probeUp, now)
	if err := store.Save([]feed.Item{{Title: "Cached", Hash: "h"}}, now.Add(-time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	p.SkipCache = true
	res := p.Run(context.Background())

	if res.Outcome != OutcomeFetched {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeFetched)
	}
	if requests.Load() == 0 {
		t.Error("no fetch happened with SkipCache set")
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Live story" {
		t.Errorf("items = %+v, want the live article", res.Items)
	}
}

func TestRun_OfflineWithStaleCache(t *testing.T) {
	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: "https://unreachable.invalid/feed"})
	p, store := newTestPipeline(t, cfg, probeDown, now)

	stale := []feed.Item{{Title: "Yesterday's story", Hash: "h"}}
	if err := store.Save(stale, now.Add(-5*time.Hour)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	res := p.Run(context.Background())

	if res.Outcome != OutcomeStaleCache {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeStaleCache)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Yesterday's story" {
		t.Errorf("items = %+v, want the stale snapshot", res.Items)
	}
}

func TestRun_OfflineWithNoCache(t *testing.T) {
	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: "https://unreachable.invalid/feed"})
	p, _ := newTestPipeline(t, cfg, probeDown, now)

	res := p.Run(context.Background())

	if res.Outcome != OutcomeOffline {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeOffline)
	}
	if res.Items == nil {
		t.Error("items is nil, want empty slice")
	}
	if len(res.Items) != 0 {
		t.Errorf("items = %d, want 0", len(res.Items))
	}
}

func TestRun_DedupKeepsFirstSource(t *testing.T) {
	pub := time.Now().Format(time.RFC1123Z)
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("Shared story", "https://example.com/s", pub)))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(
			rssEntry("Shared story", "https://example.com/s", pub),
			rssEntry("B exclusive", "https://example.com/b", pub),
		))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	now := time.Now()
	cfg := testConfig(
		config.Feed{Name: "Feed A", URL: ts.URL + "/a"},
		config.Feed{Name: "Feed B", URL: ts.URL + "/b"},
	)
	p, _ := newTestPipeline(t, cfg, probeUp, now)

	res := p.Run(context.Background())

	if res.Fetched != 3 {
		t.Errorf("fetched = %d, want 3 raw items", res.Fetched)
	}
	if res.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", res.Duplicates)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %d, want 2 after dedup", len(res.Items))
	}
	if res.Items[0].Source != "Feed A" {
		t.Errorf("kept copy from %q, want first-seen Feed A", res.Items[0].Source)
	}
}

func TestRun_RecencyFilter(t *testing.T) {
	now := time.Now()
	recent := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	old := now.Add(-73 * time.Hour).Format(time.RFC1123Z)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(
			rssEntry("Recent story", "https://example.com/r", recent),
			rssEntry("Old story", "https://example.com/o", old),
			rssEntry("Undated story", "https://example.com/u", ""),
		))
	}))
	defer ts.Close()

	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})
	p, _ := newTestPipeline(t, cfg, probeUp, now)

	res := p.Run(context.Background())

	if res.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", res.Dropped)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %d, want recent + undated", len(res.Items))
	}
	for _, it := range res.Items {
		if it.Title == "Old story" {
			t.Error("old article survived the recency filter")
		}
	}
}

func TestRun_SourceOrderPreserved(t *testing.T) {
	pub := time.Now().Format(time.RFC1123Z)
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		// Slowest source is declared first; order must not depend on
		// completion time.
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, rssBody(rssEntry("From A", "https://example.com/a", pub)))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("From B", "https://example.com/b", pub)))
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("From C", "https://example.com/c", pub)))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(
		config.Feed{Name: "A", URL: ts.URL + "/a"},
		config.Feed{Name: "B", URL: ts.URL + "/b"},
		config.Feed{Name: "C", URL: ts.URL + "/c"},
	)
	p, _ := newTestPipeline(t, cfg, probeUp, time.Now())

	res := p.Run(context.Background())

	if len(res.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Items))
	}
	for i, want := range []string{"From A", "From B", "From C"} {
		if res.Items[i].Title != want {
			t.Errorf("items[%d] = %q, want %q", i, res.Items[i].Title, want)
		}
	}
}

func TestRun_BrokenFeedDegrades(t *testing.T) {
	pub := time.Now().Format(time.RFC1123Z)
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("Good story", "https://example.com/g", pub)))
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := testConfig(
		config.Feed{Name: "Bad", URL: ts.URL + "/bad"},
		config.Feed{Name: "Good", URL: ts.URL + "/good"},
	)
	p, _ := newTestPipeline(t, cfg, probeUp, time.Now())

	res := p.Run(context.Background())

	if res.Outcome != OutcomeFetched {
		t.Errorf("outcome = %q, want %q", res.Outcome, OutcomeFetched)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Good story" {
		t.Errorf("items = %+v, want only the good feed's article", res.Items)
	}
}

func TestRun_DayFilterSkipsFeed(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, rssBody())
	}))
	defer ts.Close()

	monday := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	cfg := testConfig(config.Feed{Name: "Weekend only", URL: ts.URL, Days: []string{"saturday", "sunday"}})
	p, _ := newTestPipeline(t, cfg, probeUp, monday)

	res := p.Run(context.Background())

	if requests.Load() != 0 {
		t.Errorf("feed fetched %d times on a skipped day", requests.Load())
	}
	if len(res.Items) != 0 {
		t.Errorf("items = %d, want 0", len(res.Items))
	}
}

func TestRun_RewritesCache(t *testing.T) {
	now := time.Now()
	pub := now.Format(time.RFC1123Z)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody(rssEntry("Persisted story", "https://example.com/p", pub)))
	}))
	defer ts.Close()

	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})
	p, store := newTestPipeline(t, cfg, probeUp, now)

	if res := p.Run(context.Background()); res.Outcome != OutcomeFetched {
		t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeFetched)
	}

	snap := store.Load()
	if len(snap.Articles) != 1 || snap.Articles[0].Title != "Persisted story" {
		t.Errorf("cache = %+v, want the fetched article persisted", snap.Articles)
	}
	if !snap.Fresh(now) {
		t.Error("rewritten cache should be fresh")
	}
}

func TestRun_EmptyFetchStillPersists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody())
	}))
	defer ts.Close()

	now := time.Now()
	cfg := testConfig(config.Feed{Name: "A", URL: ts.URL})
	p, store := newTestPipeline(t, cfg, probeUp, now)

	res := p.Run(context.Background())
	if len(res.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(res.Items))
	}

	// Even an empty result rewrites the snapshot timestamp.
	if snap := store.Load(); !snap.Fresh(now) {
		t.Error("empty run should still stamp the cache")
	}
}

func TestDedupe(t *testing.T) {
	a := feed.Item{Title: "X", Link: "1", Source: "A", Hash: feed.ItemHash("X", "1")}
	aAgain := feed.Item{Title: "X", Link: "1", Source: "B", Hash: feed.ItemHash("X", "1")}
	b := feed.Item{Title: "Y", Link: "2", Source: "B", Hash: feed.ItemHash("Y", "2")}

	got := dedupe([]feed.Item{a, aAgain, b})
	if len(got) != 2 {
		t.Fatalf("deduped length = %d, want 2", len(got))
	}
	if got[0].Source != "A" || got[0].Title != "X" {
		t.Errorf("got[0] = %+v, want the first occurrence from A", got[0])
	}
	if got[1].Title != "Y" {
		t.Errorf("got[1] = %+v, want Y", got[1])
	}

	// Idempotent: deduplicating the result changes nothing.
	again := dedupe(got)
	if len(again) != len(got) {
		t.Fatalf("second dedupe length = %d, want %d", len(again), len(got))
	}
	for i := range got {
		if again[i].Hash != got[i].Hash {
			t.Fatalf("second dedupe reordered items at %d", i)
		}
	}
}
