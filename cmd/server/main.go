package main

import (
	"context"
	"fmt"
	"os"

	"adpulse/internal/delivery"
	"adpulse/internal/domain"
	"adpulse/internal/infrastructure"
	"adpulse/internal/ingest"
	"adpulse/internal/usecase"
	"adpulse/pkg/config"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting server")

	m := metrics.New()

	processor := ingest.NewFileProcessor()
	processor.LargeFileRows = cfg.Ingest.LargeFileRows
	processor.HugeFileRows = cfg.Ingest.HugeFileRows

	datasets := infrastructure.NewDatasetRepository(log)

	var cache domain.DatasetCache
	if cfg.Cache.Enabled {
		sqliteCache, err := infrastructure.NewSQLiteDatasetCache(cfg.Cache.Path, log)
		if err != nil {
			log.WithError(err).Warn("Dataset cache unavailable, continuing without persistence")
		} else {
			defer sqliteCache.Close()
			cache = sqliteCache
		}
	}

	processService := usecase.NewProcessService(
		processor,
		datasets,
		cache,
		infrastructure.NewUnscoredQuality(),
		log,
		m,
	)
	queryService := usecase.NewQueryService(datasets, log, m)

	if err := processService.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("Could not restore cached dataset")
	}

	handlers := delivery.NewHTTPHandlers(
		processService,
		queryService,
		infrastructure.NewExporter(),
		cfg.Ingest.MaxUploadBytes,
		log,
		m,
	)
	router := delivery.NewHTTPRouter(handlers, log, m, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	engine := router.SetupRoutes()
	log.WithField("port", cfg.Server.Port).Info("Listening")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}
