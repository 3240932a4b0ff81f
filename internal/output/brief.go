package output

import (
	"io"
	"time"

	"github.com/ppiankov/dailybrief/internal/feed"
	"github.com/ppiankov/dailybrief/internal/rank"
)

// Brief is the full input for a brief formatter.
type Brief struct {
	GeneratedAt time.Time
	Model       string
	Summary     string
	Articles    []feed.Item
	Trending    []rank.Trend
}

// Date returns the day key used in artifact file names.
func (b Brief) Date() string {
	return b.GeneratedAt.Format("2006-01-02")
}

// Formatter writes a formatted brief to w.
type Formatter interface {
	Format(w io.Writer, b Brief) error
}

// groupByCategory splits articles per category, keeping categories in
// first-seen order and articles in input order.
func groupByCategory(items []feed.Item) ([]string, map[string][]feed.Item) {
	var order []string
	groups := make(map[string][]feed.Item)
	for _, it := range items {
		if _, ok := groups[it.Category]; !ok {
			order = append(order, it.Category)
		}
		groups[it.Category] = append(groups[it.Category], it)
	}
	return order, groups
}
