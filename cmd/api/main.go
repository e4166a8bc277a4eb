package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/facemoji/facemoji/internal/api"
	"github.com/facemoji/facemoji/internal/config"
	"github.com/facemoji/facemoji/internal/database"
	"github.com/facemoji/facemoji/internal/emoji"
	"github.com/facemoji/facemoji/internal/face"
	"github.com/facemoji/facemoji/internal/job"
	"github.com/facemoji/facemoji/internal/kvstore"
	"github.com/facemoji/facemoji/internal/overlay"
	"github.com/facemoji/facemoji/internal/pipeline"
	"github.com/facemoji/facemoji/internal/ratelimit"
	"github.com/facemoji/facemoji/internal/stream"
	"github.com/facemoji/facemoji/internal/task"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting FaceMoji API",
		slog.String("environment", cfg.Environment),
		slog.String("provider", cfg.ProviderType),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	catalog, err := emoji.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load emoji catalog: %w", err)
	}
	logger.Info("emoji catalog loaded", slog.Int("entries", catalog.Len()))

	landmarkProvider, err := face.NewLandmarkProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create landmark provider: %w", err)
	}

	assets := overlay.NewAssetCache(logger)
	pipe := pipeline.New(landmarkProvider, catalog, assets, logger)

	runner := task.NewRunner(cfg.MaxConcurrency, logger)

	kv := kvstore.New(pool)
	jobStore := job.NewStore(kv, cfg.JobTTL)
	tracker := job.NewTracker(jobStore, pipe, runner, logger)

	limiter := ratelimit.New(pool, cfg.RateLimitWindow)
	coordinator := stream.NewCoordinator(pipe, runner, limiter, stream.Config{
		TargetFPS:  cfg.TargetFPS,
		FrameLimit: cfg.FrameRateLimit,
	}, logger)

	// Periodic cleanup of expired job records and rate limit windows
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every 10m", func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if removed, err := kv.CleanupExpired(cleanupCtx); err != nil {
			logger.Warn("kv cleanup failed", slog.Any("error", err))
		} else if removed > 0 {
			logger.Debug("kv cleanup", slog.Int64("removed", removed))
		}
		if removed, err := limiter.CleanupExpired(cleanupCtx); err != nil {
			logger.Warn("rate limit cleanup failed", slog.Any("error", err))
		} else if removed > 0 {
			logger.Debug("rate limit cleanup", slog.Int64("removed", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}
	scheduler.Start()

	router := api.NewRouter(logger, &api.Dependencies{
		Pipeline:    pipe,
		Catalog:     catalog,
		Tracker:     tracker,
		Coordinator: coordinator,
		DB:          pool,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	<-scheduler.Stop().Done()
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}
