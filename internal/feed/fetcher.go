package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/dailybrief/internal/config"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "Mozilla/5.0 (compatible; dailybrief/1.0; +https://github.com/ppiankov/dailybrief)"
)

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// Fetcher pulls articles from RSS/Atom feeds.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher with a bounded HTTP timeout.
func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   fetchTimeout,
			Transport: &uaTransport{base: http.DefaultTransport},
		},
		logger: logger,
	}
}

// FetchOne pulls up to maxItems articles from a single configured feed,
// in the order the feed lists them. Fetch or parse failures are logged
// and yield an empty slice so one broken feed never takes down a run.
func (f *Fetcher) FetchOne(ctx context.Context, src config.Feed, maxItems int) []Item {
	f.logger.Info("fetching feed", "feed", src.Name)

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = f.client
	parsed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		f.logger.Warn("feed fetch failed", "feed", src.Name, "error", err)
		return nil
	}

	entries := parsed.Items
	if maxItems > 0 && len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, itemFromEntry(entry, src))
	}

	f.logger.Info("fetched feed", "feed", src.Name, "items", len(items))
	return items
}

func itemFromEntry(entry *gofeed.Item, src config.Feed) Item {
	title := entry.Title
	if title == "" {
		title = "No title"
	}

	summary := StripHTML(entry.Description)
	if summary == "" {
		summary = StripHTML(entry.Content)
	}
	if summary == "" {
		summary = "No summary"
	}

	published := entry.Published
	if published == "" {
		published = UnknownDate
	}

	return Item{
		Title:     title,
		Link:      entry.Link,
		Summary:   summary,
		Published: published,
		Source:    src.Name,
		Category:  src.Category,
		Hash:      ItemHash(title, entry.Link),
	}
}

// ShouldFetchToday reports whether a feed's day filter allows fetching
// at the given time. Day names match case-insensitively; a feed without
// a days list runs every day.
func ShouldFetchToday(src config.Feed, now time.Time) bool {
	if len(src.Days) == 0 {
		return true
	}
	today := now.Weekday().String()
	for _, day := range src.Days {
		if strings.EqualFold(day, today) {
			return true
		}
	}
	return false
}
