package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/drishiq/concierge/internal/astro"
	"github.com/drishiq/concierge/internal/config"
	"github.com/drishiq/concierge/internal/generation"
	"github.com/drishiq/concierge/internal/geo"
	"github.com/drishiq/concierge/internal/greeter"
	"github.com/drishiq/concierge/internal/lens"
	"github.com/drishiq/concierge/internal/server"
	"github.com/drishiq/concierge/internal/storage"
	"github.com/drishiq/concierge/internal/storage/memory"
	"github.com/drishiq/concierge/internal/storage/sqlite"
	"github.com/drishiq/concierge/internal/telemetry"
	"github.com/drishiq/concierge/internal/tenant"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdown, err := telemetry.InitTracer("concierge", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store storage.TenantStore
	switch cfg.Storage.Type {
	case "memory":
		store = memory.New()
	default:
		sqliteStore, err := sqlite.New(cfg.Storage.SQLite.Path)
		if err != nil {
			log.Fatalf("Failed to open tenant store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	registry := tenant.NewRegistry(store, tenant.WithRegistryLogger(logger))
	resolver := tenant.NewResolver(registry,
		tenant.WithEnvironment(cfg.Environment),
		tenant.WithResolverLogger(logger),
	)

	gen := generation.NewClient(cfg.Generation.APIKey, cfg.Generation.BaseURL)
	builder := greeter.NewBuilder(gen, greeter.WithLogger(logger))

	compute := astro.NewClient(cfg.Astro.BaseURL)
	pipeline := lens.NewPipeline(gen, compute, lens.WithPipelineLogger(logger))

	handlerOpts := []server.HandlerOption{}
	if cfg.Geo.BaseURL != "" {
		handlerOpts = append(handlerOpts, server.WithGeo(geo.NewClient(cfg.Geo.BaseURL)))
	}
	handler := server.NewHandler(resolver, builder, pipeline, handlerOpts...)

	srv := server.New(cfg.Server.Port, logger, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("concierge started",
		slog.Int("port", cfg.Server.Port),
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.Storage.Type),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-sigChan:
		logger.Info("shutdown signal received, draining in-flight requests")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
