package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ppiankov/dailybrief/internal/feed"
)

type jsonBrief struct {
	GeneratedAt  string      `json:"generated_at"`
	Model        string      `json:"model,omitempty"`
	Summary      string      `json:"summary"`
	ArticleCount int         `json:"article_count"`
	Articles     []feed.Item `json:"articles"`
}

// JSONFormatter formats a brief as the machine-readable artifact.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the brief as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, b Brief) error {
	articles := b.Articles
	if articles == nil {
		articles = []feed.Item{}
	}

	out := jsonBrief{
		GeneratedAt:  b.GeneratedAt.Format(time.RFC3339),
		Model:        b.Model,
		Summary:      b.Summary,
		ArticleCount: len(articles),
		Articles:     articles,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
