package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/feed"
	"github.com/ppiankov/dailybrief/internal/rank"
)

var explainPublished string

var explainCmd = &cobra.Command{
	Use:   "explain <title>",
	Short: "Show the scoring breakdown for an article title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  explainAction,
}

func init() {
	explainCmd.Flags().StringVar(&explainPublished, "published", "", "publication date to test recency against (e.g. RFC3339)")
	rootCmd.AddCommand(explainCmd)
}

func explainAction(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	title := strings.Join(args, " ")
	item := feed.Item{
		Title:     title,
		Published: explainPublished,
	}
	if explainPublished == "" {
		item.Published = feed.UnknownDate
	}

	score, contribs := rank.Score(item, cfg.Settings.Keywords, time.Now())

	fmt.Printf("Title: %s\n", title)
	if explainPublished != "" {
		fmt.Printf("Published: %s\n", explainPublished)
	}
	fmt.Printf("Score: %d\n", score)
	fmt.Println()

	if len(contribs) == 0 {
		fmt.Println("No keyword or recency contributions.")
		return nil
	}

	fmt.Println("Breakdown:")
	for _, c := range contribs {
		fmt.Printf("  %+d  %s\n", c.Points, c.Reason)
	}
	return nil
}
