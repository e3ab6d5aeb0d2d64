package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oppscan/oppscan/internal/application"
	"github.com/oppscan/oppscan/internal/application/pipeline"
	"github.com/oppscan/oppscan/internal/application/publish"
	"github.com/oppscan/oppscan/internal/data/cache"
	"github.com/oppscan/oppscan/internal/domain/confluence"
	"github.com/oppscan/oppscan/internal/domain/signalbuf"
	httpiface "github.com/oppscan/oppscan/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation and serving loops until interrupted",
		RunE:  runServe,
	}
	cmd.Flags().Int64("seed", 1, "Seed for the synthetic providers")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}
	setLogLevel(cfg.LogLevel)

	if warning := cfg.WindowWarning(); warning != "" {
		log.Warn().Msg(warning)
	}

	weights, err := cfg.WeightConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", version).
		Int("symbols", len(cfg.Scan.Symbols)).
		Int("components", weights.Len()).
		Str("redis", cfg.Redis.Addr).
		Msg("Starting scanner")

	buffer, err := signalbuf.NewBuffer(cfg.Scan.Window, time.Now)
	if err != nil {
		return err
	}

	var store publish.Store
	if cfg.Redis.Addr != "" {
		store = publish.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
	} else {
		log.Warn().Msg("No redis configured, publishing to in-process store")
		store = publish.NewMemoryStore()
	}
	writer := publish.NewWriter(store, cfg.RedisTTL())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := httpiface.NewMetricsRegistry(registry)

	analyzer := confluence.NewAnalyzer(weights, confluence.NewDivergenceAnalyzer(), time.Now)
	scoreProviders := buildSimProviders(cfg, weights, seed, cache.NewAuto(cfg.Redis.Addr, cfg.Redis.DB))
	executor := pipeline.NewExecutor(analyzer, scoreProviders, buffer, cfg.Scan.Symbols, cfg.Scan.ProviderTimeout, metrics)
	runner := pipeline.NewRunner(executor, buffer, writer, metrics,
		cfg.Scan.EvaluationInterval, cfg.Scan.ServingInterval, cfg.Scan.TopN)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := httpiface.NewServer(httpiface.ServerConfig{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, store, registry)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	return nil
}
