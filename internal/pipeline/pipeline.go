package pipeline

import (
	"context"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/dailybrief/internal/cache"
	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/feed"
)

// Outcome tells how a run obtained its items.
type Outcome string

const (
	OutcomeCached     Outcome = "cached"
	OutcomeFetched    Outcome = "fetched"
	OutcomeStaleCache Outcome = "stale_cache"
	OutcomeOffline    Outcome = "offline"
)

// Result is the product of one pipeline run. Fetched counts raw items
// before dedup; Duplicates and Dropped count removals by the dedup and
// recency stages.
type Result struct {
	Items      []feed.Item
	Outcome    Outcome
	Fetched    int
	Duplicates int
	Dropped    int
}

// Prober reports whether the network looks usable.
type Prober func(ctx context.Context) bool

const (
	probeHost    = "www.google.com"
	probeTimeout = 5 * time.Second

	maxConcurrentFetches = 4
)

// DefaultProber resolves a well-known host; a failed lookup is taken
// to mean the machine is offline.
func DefaultProber(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, err := net.DefaultResolver.LookupHost(ctx, probeHost)
	return err == nil
}

// Pipeline produces the day's article set: serve a fresh cache, or
// fetch every eligible source, dedup, filter by recency, and rewrite
// the cache.
type Pipeline struct {
	// SkipCache forces a refetch even when a fresh snapshot exists.
	SkipCache bool

	cfg     *config.Config
	fetcher *feed.Fetcher
	store   *cache.Store
	probe   Prober
	logger  *slog.Logger
	now     func() time.Time
}

// New wires a pipeline. A nil probe falls back to DefaultProber.
func New(cfg *config.Config, fetcher *feed.Fetcher, store *cache.Store, probe Prober, logger *slog.Logger) *Pipeline {
	if probe == nil {
		probe = DefaultProber
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		probe:   probe,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one fetch cycle. Per-source and cache failures degrade
// to fewer items; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context) Result {
	now := p.now()

	snap := p.store.Load()
	if !p.SkipCache && snap.Fresh(now) && len(snap.Articles) > 0 {
		p.logger.Info("using cached articles", "count", len(snap.Articles))
		return Result{Items: snap.Articles, Outcome: OutcomeCached}
	}

	if !p.probe(ctx) {
		if len(snap.Articles) > 0 {
			p.logger.Warn("network unreachable, falling back to stale cache", "count", len(snap.Articles))
			return Result{Items: snap.Articles, Outcome: OutcomeStaleCache}
		}
		p.logger.Warn("network unreachable and no cached articles to fall back on")
		return Result{Items: []feed.Item{}, Outcome: OutcomeOffline}
	}

	items := p.fetchAll(ctx, now)
	fetched := len(items)

	items = dedupe(items)
	duplicates := fetched - len(items)
	if duplicates > 0 {
		p.logger.Info("removed duplicate articles", "count", duplicates)
	}

	window := time.Duration(p.cfg.Settings.FilterHours) * time.Hour
	kept := filterRecent(items, window, now)
	dropped := len(items) - len(kept)
	p.logger.Info("recent articles", "count", len(kept), "dropped", dropped)

	if err := p.store.Save(kept, now); err != nil {
		p.logger.Warn("could not save cache", "error", err)
	}

	return Result{
		Items:      kept,
		Outcome:    OutcomeFetched,
		Fetched:    fetched,
		Duplicates: duplicates,
		Dropped:    dropped,
	}
}

// fetchAll pulls every source eligible today. Sources are fetched
// concurrently but results keep the configured source order.
func (p *Pipeline) fetchAll(ctx context.Context, now time.Time) []feed.Item {
	active := make([]config.Feed, 0, len(p.cfg.Feeds))
	for _, src := range p.cfg.Feeds {
		if feed.ShouldFetchToday(src, now) {
			active = append(active, src)
		} else {
			p.logger.Info("skipping feed today", "feed", src.Name)
		}
	}

	results := make([][]feed.Item, len(active))
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, src := range active {
		g.Go(func() error {
			results[i] = p.fetcher.FetchOne(ctx, src, p.cfg.Settings.MaxArticlesPerFeed)
			return nil
		})
	}
	_ = g.Wait()

	var all []feed.Item
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

// dedupe keeps the first item for each hash, preserving input order.
func dedupe(items []feed.Item) []feed.Item {
	seen := make(map[string]bool, len(items))
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if seen[it.Hash] {
			continue
		}
		seen[it.Hash] = true
		out = append(out, it)
	}
	return out
}

func filterRecent(items []feed.Item, window time.Duration, now time.Time) []feed.Item {
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if feed.IsRecent(it, window, now) {
			out = append(out, it)
		}
	}
	return out
}
