package rank

import (
	"sort"
	"strings"

	"github.com/ppiankov/dailybrief/internal/feed"
)

// Trend is a keyword that showed up in titles from multiple distinct sources.
type Trend struct {
	Keyword string
	Sources []string // distinct source names, sorted
}

// FindTrending detects keywords appearing in minSources or more
// distinct sources. Results are sorted by source count descending, then
// keyword alphabetically.
func FindTrending(items []feed.Item, keywords []string, minSources int) []Trend {
	if minSources < 2 {
		minSources = 2
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	kwSources := make(map[string]map[string]bool)
	for _, it := range items {
		titleLower := strings.ToLower(it.Title)
		for _, kw := range keywords {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				if kwSources[kw] == nil {
					kwSources[kw] = make(map[string]bool)
				}
				kwSources[kw][it.Source] = true
			}
		}
	}

	var trends []Trend
	for kw, srcMap := range kwSources {
		if len(srcMap) < minSources {
			continue
		}
		sources := make([]string, 0, len(srcMap))
		for s := range srcMap {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		trends = append(trends, Trend{Keyword: kw, Sources: sources})
	}

	sort.Slice(trends, func(i, j int) bool {
		if len(trends[i].Sources) != len(trends[j].Sources) {
			return len(trends[i].Sources) > len(trends[j].Sources)
		}
		return trends[i].Keyword < trends[j].Keyword
	})

	return trends
}
