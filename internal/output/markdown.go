package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/dailybrief/internal/feed"
)

// articlePreview bounds the per-article summary text in the listing.
const articlePreview = 150

// MarkdownFormatter formats a brief as the daily Markdown artifact.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the brief as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, b Brief) error {
	date := b.Date()
	clock := b.GeneratedAt.Format("15:04:05")

	fmt.Fprintf(w, "# 📰 Daily Tech Brief\n\n")
	fmt.Fprintf(w, "**Date**: %s  \n", date)
	fmt.Fprintf(w, "**Generated**: %s  \n", clock)
	fmt.Fprintf(w, "**Total Articles**: %d  \n", len(b.Articles))
	fmt.Fprintf(w, "**Model**: %s\n\n", b.Model)
	fmt.Fprintf(w, "---\n\n")

	fmt.Fprintf(w, "## 🤖 AI Summary\n\n")
	fmt.Fprint(w, b.Summary)
	fmt.Fprintf(w, "\n\n---\n\n")

	if len(b.Trending) > 0 {
		fmt.Fprintf(w, "## 📈 Trending\n\n")
		for _, tr := range b.Trending {
			fmt.Fprintf(w, "- **%q** — mentioned in %d sources: %s\n",
				tr.Keyword, len(tr.Sources), strings.Join(tr.Sources, ", "))
		}
		fmt.Fprintf(w, "\n---\n\n")
	}

	fmt.Fprintf(w, "## 📋 All Articles\n\n")
	order, groups := groupByCategory(b.Articles)
	for _, category := range order {
		fmt.Fprintf(w, "### %s\n\n", category)
		for _, a := range groups[category] {
			fmt.Fprintf(w, "- **[%s](%s)**  \n", a.Title, a.Link)
			fmt.Fprintf(w, "  *%s* - %s  \n", a.Source, a.Published)
			fmt.Fprintf(w, "  %s\n\n", feed.Truncate(a.Summary, articlePreview))
		}
	}

	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Generated by dailybrief on %s at %s*\n", date, clock)
	return nil
}
