package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oppscan/oppscan/internal/application"
	"github.com/oppscan/oppscan/internal/application/pipeline"
	"github.com/oppscan/oppscan/internal/data/cache"
	"github.com/oppscan/oppscan/internal/domain/confluence"
	"github.com/oppscan/oppscan/internal/domain/signalbuf"
	"github.com/oppscan/oppscan/internal/providers"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one offline evaluation and print the ranked result",
		Long: `Evaluates every configured symbol once against synthetic providers,
ranks the results, and prints the table. Useful for verifying configuration
and scoring behavior without redis or a serving loop.`,
		RunE: runScan,
	}
	cmd.Flags().Int("top-n", 0, "Override configured top-N")
	cmd.Flags().Int64("seed", 1, "Seed for the synthetic providers")
	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	topN, _ := cmd.Flags().GetInt("top-n")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}
	setLogLevel(cfg.LogLevel)
	if topN <= 0 {
		topN = cfg.Scan.TopN
	}

	weights, err := cfg.WeightConfig()
	if err != nil {
		return err
	}

	buffer, err := signalbuf.NewBuffer(cfg.Scan.Window, time.Now)
	if err != nil {
		return err
	}

	analyzer := confluence.NewAnalyzer(weights, confluence.NewDivergenceAnalyzer(), time.Now)
	scoreProviders := buildSimProviders(cfg, weights, seed, cache.NewMemory())

	executor := pipeline.NewExecutor(analyzer, scoreProviders, buffer, cfg.Scan.Symbols, cfg.Scan.ProviderTimeout, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scan.ProviderTimeout+5*time.Second)
	defer cancel()
	executor.RunTick(ctx)

	ranked := signalbuf.Rank(buffer.SnapshotNow(), topN)
	printRanked(ranked)
	return nil
}

// buildSimProviders assembles the synthetic provider chain: one provider
// per weighted component, each behind the same cache, rate-limit, and
// breaker plumbing a real provider would get.
func buildSimProviders(cfg *application.Config, weights *confluence.WeightConfig, seed int64, responseCache cache.Cache) []providers.ComponentScoreProvider {
	limiter := providers.NewLimiter(cfg.Scan.ProviderRPS, cfg.Scan.ProviderBurst)

	out := make([]providers.ComponentScoreProvider, 0, weights.Len())
	for _, kind := range weights.Components() {
		var p providers.ComponentScoreProvider = providers.NewSimProvider(kind, seed)
		p = providers.WithBreaker(p, providers.DefaultBreakerConfig())
		p = providers.WithRateLimit(p, limiter)
		p = providers.WithCache(p, responseCache, cfg.Scan.ProviderCacheTTL)
		out = append(out, p)
	}
	return out
}

func printRanked(ranked signalbuf.RankedSnapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSYMBOL\tSCORE\tCONF\tRELIAB\tCLASS")
	for i, s := range ranked.Signals {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.2f\t%.2f\t%s\n",
			i+1, s.Symbol, s.Score, s.Confidence, s.Reliability, s.Classification)
	}
	if err := w.Flush(); err != nil {
		log.Error().Err(err).Msg("Failed to render table")
	}
	fmt.Printf("\n%d unique symbols\n", ranked.UniqueSymbols)
}
