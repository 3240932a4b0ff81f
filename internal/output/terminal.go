package output

import (
	"fmt"
	"io"
	"strings"
)

// topArticles caps the article listing in terminal output; the full
// list lives in the Markdown artifact.
const topArticles = 10

// TerminalFormatter formats a brief for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the brief to w.
func (f *TerminalFormatter) Format(w io.Writer, b Brief) error {
	header := fmt.Sprintf("dailybrief — %s, %d articles", b.Date(), len(b.Articles))
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if len(b.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	if len(b.Trending) > 0 {
		fmt.Fprintln(w, f.bold("--- Trending ---"))
		fmt.Fprintln(w)
		for _, tr := range b.Trending {
			fmt.Fprintf(w, "  %s — mentioned in %d sources\n",
				f.bold(fmt.Sprintf("%q", tr.Keyword)), len(tr.Sources))
			fmt.Fprintf(w, "    %s\n", f.dim(strings.Join(tr.Sources, ", ")))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, f.green(f.bold("--- Summary ---")))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimRight(b.Summary, "\n"))
	fmt.Fprintln(w)

	n := len(b.Articles)
	if n > topArticles {
		n = topArticles
	}
	fmt.Fprintln(w, f.yellow(f.bold(fmt.Sprintf("--- Top Articles (%d of %d) ---", n, len(b.Articles)))))
	fmt.Fprintln(w)
	for _, a := range b.Articles[:n] {
		fmt.Fprintf(w, "  %s %s — %s\n",
			f.bold(fmt.Sprintf("[%d]", a.RankScore)), a.Title, f.dim(a.Source))
		if a.Link != "" {
			fmt.Fprintf(w, "      %s\n", f.dim(a.Link))
		}
	}

	return nil
}

// ANSI helpers. No-op when color is off.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
