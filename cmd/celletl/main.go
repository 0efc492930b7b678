package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cell-telemetry-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cell-telemetry-etl/internal/adapter/kafka"
	"github.com/couchcryptid/cell-telemetry-etl/internal/adapter/opencellid"
	"github.com/couchcryptid/cell-telemetry-etl/internal/cellinfo"
	"github.com/couchcryptid/cell-telemetry-etl/internal/config"
	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
	"github.com/couchcryptid/cell-telemetry-etl/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// Values already in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize locator (feature-flagged via OPENCELLID_ENABLED / OPENCELLID_TOKEN).
	var locator domain.CellLocator
	if cfg.OpenCellIDEnabled {
		client := opencellid.NewClient(cfg.OpenCellIDToken, cfg.OpenCellIDTimeout, metrics, logger)
		cached, err := opencellid.NewCachedLocator(client, cfg.OpenCellIDCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create location cache", "error", err)
			os.Exit(1)
		}
		locator = cached
		metrics.LocateEnabled.Set(1)
		logger.Info("opencellid location lookup enabled", "cache_size", cfg.OpenCellIDCacheSize, "timeout", cfg.OpenCellIDTimeout)
	} else {
		logger.Info("opencellid location lookup disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(locator, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	bridge := cellinfo.NewBridge(metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, bridge, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
