package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/dailybrief/internal/feed"
)

// previewLength bounds the article preview embedded in the prompt.
const previewLength = 300

// DefaultTemplate is the built-in prompt used when no template file is
// configured or the file cannot be read. Recognized placeholders:
// {date}, {articles_count}, {articles_text}.
const DefaultTemplate = `You are a tech news curator creating a daily brief for {date}.

IMPORTANT RULES:
- Each article should appear ONLY ONCE in your summary
- Do NOT repeat or duplicate any article
- Be concise - 1-2 sentences per article maximum

Your task:
1. Group articles by theme (AI/ML, Tech Industry, Ethics, etc.)
2. For each article, briefly explain what happened and why it matters
3. Use markdown headers (##) and bullet points
4. Include the article link for each item

There are exactly {articles_count} articles below. Your summary should cover each one ONCE.

Articles:
{articles_text}

Format as clean Markdown. Remember: NO DUPLICATES.
`

// LoadTemplate reads a prompt template from disk, falling back to
// DefaultTemplate when the file is missing or unreadable.
func LoadTemplate(path string, logger *slog.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("prompt template not readable, using built-in", "path", path)
		return DefaultTemplate
	}
	return string(data)
}

// Build renders the prompt: each article becomes a numbered block with
// title, provenance, link, and a truncated preview, substituted into
// the template's placeholders. Substitution never fails; a template
// missing a placeholder simply keeps its literal text.
func Build(template string, items []feed.Item, now time.Time) string {
	if template == "" {
		template = DefaultTemplate
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, item.Title)
		fmt.Fprintf(&b, "   - Source: %s\n", item.Source)
		fmt.Fprintf(&b, "   - Category: %s\n", item.Category)
		fmt.Fprintf(&b, "   - Link: %s\n", item.Link)
		fmt.Fprintf(&b, "   - Preview: %s\n", feed.Truncate(item.Summary, previewLength))
	}

	r := strings.NewReplacer(
		"{date}", now.Format("January 02, 2006"),
		"{articles_count}", strconv.Itoa(len(items)),
		"{articles_text}", b.String(),
	)
	return r.Replace(template)
}
