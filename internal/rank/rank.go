package rank

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ppiankov/dailybrief/internal/feed"
)

const (
	keywordPoints = 2
	recencyBonus  = 3
	recencyWindow = 24 * time.Hour
)

// DefaultKeywords is the built-in signal vocabulary used when the
// config does not override it.
var DefaultKeywords = []string{"AI", "GPT", "LLM", "breakthrough", "release", "launch", "announced"}

// Contribution records a single scoring reason and its point value.
type Contribution struct {
	Reason string
	Points int
}

// Score evaluates one item: 2 points for each keyword the title
// contains (case-insensitive) plus a bonus when the item was published
// within the last 24 hours. Items with unparsable dates get the bonus
// too, consistent with the keep-when-unknown recency policy.
func Score(item feed.Item, keywords []string, now time.Time) (int, []Contribution) {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	titleLower := strings.ToLower(item.Title)

	var (
		total       int
		explanation []Contribution
	)

	for _, kw := range keywords {
		if strings.Contains(titleLower, strings.ToLower(kw)) {
			total += keywordPoints
			explanation = append(explanation, Contribution{
				Reason: fmt.Sprintf("keyword: %s", kw),
				Points: keywordPoints,
			})
		}
	}

	if feed.IsRecent(item, recencyWindow, now) {
		total += recencyBonus
		explanation = append(explanation, Contribution{
			Reason: fmt.Sprintf("published within %dh", int(recencyWindow.Hours())),
			Points: recencyBonus,
		})
	}

	return total, explanation
}

// Rank returns a copy of items with RankScore set, sorted by descending
// score. The sort is stable, so equal scores keep their incoming order.
func Rank(items []feed.Item, keywords []string, now time.Time) []feed.Item {
	ranked := make([]feed.Item, len(items))
	copy(ranked, items)

	for i := range ranked {
		score, _ := Score(ranked[i], keywords, now)
		ranked[i].RankScore = score
	}

	slices.SortStableFunc(ranked, func(a, b feed.Item) int {
		return b.RankScore - a.RankScore
	})
	return ranked
}
