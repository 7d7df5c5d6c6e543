// Command scan runs one batch scan from the terminal and writes the ranked
// report to a local file or an s3:// target. It shares the pipeline with the
// server but needs no database.
package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"time"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
	"github.com/aristath/market-hunter/internal/config"
	"github.com/aristath/market-hunter/internal/modules/metrics"
	"github.com/aristath/market-hunter/internal/modules/news"
	"github.com/aristath/market-hunter/internal/modules/rank"
	"github.com/aristath/market-hunter/internal/modules/report"
	"github.com/aristath/market-hunter/internal/modules/scoring"
	"github.com/aristath/market-hunter/internal/modules/tickers"
	"github.com/aristath/market-hunter/pkg/logger"
)

func main() {
	indexSet := flag.String("index", "", "index set to scan: sp500, nasdaq, etf, both, all")
	topN := flag.Int("top", 0, "number of ranked records to keep")
	limit := flag.Int("limit", 0, "cap the candidate pool, 0 scans everything")
	workers := flag.Int("workers", 0, "concurrent symbol fetches")
	output := flag.String("output", "market_hunter_analysis.csv", "report target: a file path or s3://bucket/key")
	withNews := flag.Bool("news", true, "fetch one headline per ranked symbol")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	// Flags override the environment defaults
	if *indexSet != "" {
		cfg.IndexSet = *indexSet
	}
	if *topN > 0 {
		cfg.TopN = *topN
	}
	if *limit > 0 {
		cfg.PoolLimit = *limit
	}
	if *workers > 0 {
		cfg.ScanWorkers = *workers
	}

	marketClient := yahoo.NewClient(cfg.MarketDataAPIKey, log)

	registry := tickers.NewRegistry(log,
		tickers.NewSP500Source(log),
		tickers.NewNasdaq100Source(log),
		tickers.NewETFLeadersSource(),
	)

	extractor := metrics.NewExtractor(marketClient, marketClient, metrics.Config{
		MinHistoryPoints: cfg.MinHistoryPoints,
		SMAWindow:        cfg.SMAWindow,
	}, log)

	engine := scoring.NewEngine(scoring.Config{
		Weights:            scoring.DefaultConfig().Weights,
		UpsideThresholdPct: cfg.UpsideThreshold,
	})

	pipeline := rank.New(registry, extractor, engine, rank.Config{
		Workers:  cfg.ScanWorkers,
		CacheTTL: cfg.CacheTTL,
	}, log)

	log.Info().
		Str("index_set", cfg.IndexSet).
		Int("top_n", cfg.TopN).
		Int("pool_limit", cfg.PoolLimit).
		Msg("Starting batch scan")

	started := time.Now()
	result := pipeline.Run(rank.Options{
		IndexSet:  cfg.IndexSet,
		PoolLimit: cfg.PoolLimit,
		TopN:      cfg.TopN,
		Refresh:   true,
	})

	if result.Warning != "" {
		log.Warn().Str("warning", result.Warning).Msg("Scan produced no usable records")
	}

	log.Info().
		Int("survived", result.Survived).
		Int("ranked", len(result.Records)).
		Dur("elapsed", time.Since(started)).
		Msg("Scan completed")

	feed := map[string]yahoo.NewsHeadline{}
	if *withNews && len(result.Records) > 0 {
		newsClient := yahoo.NewClient(cfg.NewsAPIKey, log)
		enricher := news.NewEnricher(newsClient, cfg.NewsDelay, log)

		symbols := make([]string, 0, len(result.Records))
		for _, rec := range result.Records {
			symbols = append(symbols, rec.Symbol)
		}
		feed = enricher.Enrich(symbols)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, result.Records, feed); err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	if bucket, key, ok := report.ParseS3URL(*output); ok {
		uploader := report.NewUploader(log)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := uploader.Upload(ctx, bucket, key, buf.Bytes()); err != nil {
			log.Fatal().Err(err).Msg("Failed to upload report")
		}
		return
	}

	if err := os.WriteFile(*output, buf.Bytes(), 0644); err != nil {
		log.Fatal().Err(err).Str("path", *output).Msg("Failed to write report")
	}

	log.Info().Str("path", *output).Msg("Report written")
}
