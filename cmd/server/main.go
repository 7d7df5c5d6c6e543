package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
	"github.com/aristath/market-hunter/internal/config"
	"github.com/aristath/market-hunter/internal/database"
	"github.com/aristath/market-hunter/internal/modules/metrics"
	"github.com/aristath/market-hunter/internal/modules/news"
	"github.com/aristath/market-hunter/internal/modules/rank"
	"github.com/aristath/market-hunter/internal/modules/scoring"
	"github.com/aristath/market-hunter/internal/modules/snapshots"
	"github.com/aristath/market-hunter/internal/modules/tickers"
	"github.com/aristath/market-hunter/internal/scheduler"
	"github.com/aristath/market-hunter/internal/server"
	"github.com/aristath/market-hunter/pkg/logger"
)

func main() {
	// Load configuration first so the log level honours LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Market Hunter")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Market data and news feeds can be keyed separately
	marketClient := yahoo.NewClient(cfg.MarketDataAPIKey, log)
	newsClient := yahoo.NewClient(cfg.NewsAPIKey, log)

	// Candidate discovery across all configured index sources
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

	// Fan scan progress out to dashboard websocket clients
	progress := server.NewProgressHub(log)
	pipeline.SetProgress(func(done, total int, symbol string) {
		progress.Broadcast(server.ProgressEvent{Done: done, Total: total, Symbol: symbol})
	})

	repo := snapshots.NewRepository(db.Conn(), log)
	enricher := news.NewEnricher(newsClient, cfg.NewsDelay, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if cfg.RescanSchedule != "" {
		job := scheduler.NewRescanJob(scheduler.RescanConfig{
			Log:       log,
			Pipeline:  pipeline,
			Snapshots: repo,
			Options: rank.Options{
				IndexSet:  cfg.IndexSet,
				PoolLimit: cfg.PoolLimit,
				TopN:      cfg.TopN,
			},
		})
		if err := sched.AddJob(cfg.RescanSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RescanSchedule).Msg("Failed to register rescan job")
		}
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Config:    cfg,
		Pipeline:  pipeline,
		Snapshots: repo,
		Enricher:  enricher,
		Progress:  progress,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
