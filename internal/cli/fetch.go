package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/cache"
	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/feed"
	"github.com/ppiankov/dailybrief/internal/pipeline"
)

var fetchNoCache bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch articles from all configured feeds without summarizing",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "ignore the article cache and refetch")
	rootCmd.AddCommand(fetchCmd)
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pipe := pipeline.New(cfg, feed.NewFetcher(logger), cache.NewStore(cfg.CachePath(), logger), reachProbe, logger)
	pipe.SkipCache = fetchNoCache
	res := pipe.Run(cmd.Context())

	sources := make(map[string]bool)
	for _, it := range res.Items {
		sources[it.Source] = true
	}

	fmt.Printf("Fetched %d articles from %d sources", len(res.Items), len(sources))
	if res.Duplicates > 0 {
		fmt.Printf(" (%d duplicates removed)", res.Duplicates)
	}
	if res.Dropped > 0 {
		fmt.Printf(" (%d stale dropped)", res.Dropped)
	}
	switch res.Outcome {
	case pipeline.OutcomeCached:
		fmt.Print(" (from cache)")
	case pipeline.OutcomeStaleCache:
		fmt.Print(" (stale cache, network unreachable)")
	case pipeline.OutcomeOffline:
		fmt.Print(" (offline, no cache)")
	}
	fmt.Println()

	return nil
}
