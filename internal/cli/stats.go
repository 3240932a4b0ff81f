package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/history"
)

var (
	statsSince  string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run and source analytics",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "30d", "time window (e.g. 7d, 48h)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(statsCmd)
}

const maxRunsListed = 90

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := history.Open(cfg.Settings.HistoryFile)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = db.Close() }()

	sinceDur, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}
	sinceTime := time.Now().Add(-sinceDur)

	ctx := cmd.Context()

	runs, err := db.RecentRuns(ctx, sinceTime, maxRunsListed)
	if err != nil {
		return fmt.Errorf("get runs: %w", err)
	}
	sources, err := db.GetSourceStats(ctx, sinceTime)
	if err != nil {
		return fmt.Errorf("get source stats: %w", err)
	}

	if len(runs) == 0 {
		if statsFormat == "json" {
			fmt.Fprintln(os.Stdout, `{"runs":[],"sources":[]}`)
			return nil
		}
		fmt.Fprintln(os.Stdout, "No runs recorded. Run 'dailybrief run' first.")
		return nil
	}

	switch statsFormat {
	case "json":
		return printStatsJSON(os.Stdout, runs, sources)
	case "terminal", "":
		printStats(os.Stdout, runs, sources, sinceDur)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", statsFormat)
	}
}

type jsonStatsOutput struct {
	Runs    []jsonRun         `json:"runs"`
	Sources []jsonSourceStats `json:"sources"`
}

type jsonRun struct {
	Date         string `json:"date"`
	GeneratedAt  string `json:"generated_at"`
	Outcome      string `json:"outcome"`
	Model        string `json:"model,omitempty"`
	Fetched      int    `json:"fetched"`
	Summarized   int    `json:"summarized"`
	SummaryChars int    `json:"summary_chars"`
}

type jsonSourceStats struct {
	Source   string  `json:"source"`
	Articles int     `json:"articles"`
	Runs     int     `json:"runs"`
	Share    float64 `json:"share_pct"`
	LastSeen string  `json:"last_seen"`
}

func printStatsJSON(w io.Writer, runs []history.Run, sources []history.SourceStats) error {
	totalArticles := 0
	for _, st := range sources {
		totalArticles += st.Articles
	}

	out := jsonStatsOutput{
		Runs:    make([]jsonRun, 0, len(runs)),
		Sources: make([]jsonSourceStats, 0, len(sources)),
	}
	for _, r := range runs {
		out.Runs = append(out.Runs, jsonRun{
			Date:         r.Date,
			GeneratedAt:  r.GeneratedAt.Format(time.RFC3339),
			Outcome:      r.Outcome,
			Model:        r.Model,
			Fetched:      r.Fetched,
			Summarized:   r.Summarized,
			SummaryChars: r.SummaryChars,
		})
	}
	for _, st := range sources {
		out.Sources = append(out.Sources, jsonSourceStats{
			Source:   st.Source,
			Articles: st.Articles,
			Runs:     st.Runs,
			Share:    pct(st.Articles, totalArticles),
			LastSeen: st.LastSeen.Format(time.RFC3339),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printStats(w io.Writer, runs []history.Run, sources []history.SourceStats, since time.Duration) {
	fmt.Fprintf(w, "dailybrief stats — %s, %d runs\n\n", formatStatsDuration(since), len(runs))

	if len(sources) > 0 {
		totalArticles := 0
		maxName := 6 // minimum "Source"
		for _, st := range sources {
			totalArticles += st.Articles
			if len(st.Source) > maxName {
				maxName = len(st.Source)
			}
		}
		if maxName > 40 {
			maxName = 40
		}

		fmt.Fprintln(w, "--- Articles by Source ---")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %-*s  %8s  %5s  %6s  %s\n", maxName, "Source", "Articles", "Runs", "Share", "Last Seen")
		for _, st := range sources {
			name := st.Source
			if len(name) > maxName {
				name = name[:maxName-1] + "…"
			}
			fmt.Fprintf(w, "  %-*s  %8d  %5d  %5.0f%%  %s\n",
				maxName, name, st.Articles, st.Runs, pct(st.Articles, totalArticles), st.LastSeen.Format("2006-01-02"))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Runs ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s  %-11s  %7s  %10s  %s\n", "Date", "Outcome", "Fetched", "Summarized", "Model")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-10s  %-11s  %7d  %10d  %s\n", r.Date, r.Outcome, r.Fetched, r.Summarized, r.Model)
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// parseDuration handles both Go durations and "Nd" day notation.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
