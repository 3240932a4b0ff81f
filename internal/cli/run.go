package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/cache"
	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/feed"
	"github.com/ppiankov/dailybrief/internal/history"
	"github.com/ppiankov/dailybrief/internal/output"
	"github.com/ppiankov/dailybrief/internal/pipeline"
	"github.com/ppiankov/dailybrief/internal/prompt"
	"github.com/ppiankov/dailybrief/internal/rank"
	"github.com/ppiankov/dailybrief/internal/summarize"
)

var runNoCache bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch feeds, summarize, and write the daily brief",
	RunE:  runAction,
}

func init() {
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "ignore the article cache and refetch")
	rootCmd.AddCommand(runCmd)
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	now := time.Now()

	pipe := pipeline.New(cfg, feed.NewFetcher(logger), cache.NewStore(cfg.CachePath(), logger), reachProbe, logger)
	pipe.SkipCache = runNoCache
	res := pipe.Run(ctx)

	if len(res.Items) == 0 {
		fmt.Println("No articles to summarize.")
		recordRun(ctx, cfg, output.Brief{GeneratedAt: now}, res, 0)
		return nil
	}

	ranked := rank.Rank(res.Items, cfg.Settings.Keywords, now)
	top := ranked
	if len(top) > cfg.Settings.MaxArticlesToSummarize {
		top = top[:cfg.Settings.MaxArticlesToSummarize]
	}
	trending := rank.FindTrending(res.Items, cfg.Settings.Keywords, 2)

	svc := summarize.NewService(summarize.NewClient(cfg.Settings.OllamaHost), logger)
	model := cfg.Settings.SummaryModel
	var summaryText string
	if resolved, err := svc.ResolveModel(ctx, model); err != nil {
		logger.Error("ollama unavailable", "host", cfg.Settings.OllamaHost, "error", err)
		summaryText = summarize.ErrorPlaceholder
	} else {
		model = resolved
		tmpl := prompt.LoadTemplate(cfg.Settings.PromptFile, logger)
		summaryText = svc.Summarize(ctx, model, prompt.Build(tmpl, top, now))
	}

	brief := output.Brief{
		GeneratedAt: now,
		Model:       model,
		Summary:     summaryText,
		Articles:    ranked,
		Trending:    trending,
	}

	writer := output.NewWriter(cfg.Settings.OutputDir, logger)
	mdPath, err := writer.WriteMarkdown(brief)
	if err != nil {
		return fmt.Errorf("write markdown brief: %w", err)
	}
	jsonPath, err := writer.WriteJSON(brief)
	if err != nil {
		return fmt.Errorf("write json brief: %w", err)
	}

	if cfg.Settings.VaultSync.Enabled {
		output.SyncToVault(cfg.Settings.VaultSync.VaultPath, []string{mdPath, jsonPath}, logger)
	}

	recordRun(ctx, cfg, brief, res, len(top))

	term := output.NewTerminal(!noColor)
	if err := term.Format(os.Stdout, brief); err != nil {
		return fmt.Errorf("render brief: %w", err)
	}
	fmt.Printf("\nSaved: %s\n", mdPath)
	fmt.Printf("Saved: %s\n", jsonPath)

	return nil
}

// recordRun archives the run in the history database. History failures
// are logged and never fail the run.
func recordRun(ctx context.Context, cfg *config.Config, b output.Brief, res pipeline.Result, summarized int) {
	db, err := history.Open(cfg.Settings.HistoryFile)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer func() { _ = db.Close() }()

	counts := make(map[string]int)
	for _, it := range res.Items {
		counts[it.Source]++
	}
	sources := make([]history.SourceCount, 0, len(counts))
	for src, n := range counts {
		sources = append(sources, history.SourceCount{Source: src, Articles: n})
	}

	if _, err := db.RecordRun(ctx, history.RunInput{
		Date:         b.Date(),
		GeneratedAt:  b.GeneratedAt,
		Model:        b.Model,
		Outcome:      string(res.Outcome),
		Fetched:      res.Fetched,
		Summarized:   summarized,
		SummaryChars: len(b.Summary),
		Sources:      sources,
	}); err != nil {
		logger.Warn("could not record run", "error", err)
	}
}
