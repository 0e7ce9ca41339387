// Command api serves the evaluation run API: start runs, poll their state,
// scrape metrics.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rolebench-ai/rolebench/internal/api/router"
	"github.com/rolebench-ai/rolebench/internal/app"
	"github.com/rolebench-ai/rolebench/internal/config"
	"github.com/rolebench-ai/rolebench/internal/http/handlers"
	"github.com/rolebench-ai/rolebench/internal/observability/metrics"
	"github.com/rolebench-ai/rolebench/internal/results"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting rolebench API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	client, cleanup, err := app.BuildClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("building completion client failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	benchMetrics := metrics.NewBenchMetrics(registry)

	svc := app.NewService(cfg, client, logger, benchMetrics)

	var resultStore *results.PostgresStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connecting to postgres failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		resultStore = results.NewPostgresStore(pool)
	}

	var transcriptStore *results.TranscriptStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		transcriptStore = results.NewTranscriptStore(redisClient, cfg.TranscriptTTL)
	}
	svc.SetResultStores(resultStore, transcriptStore)

	runsHandler := handlers.NewRunsHandler(svc, handlers.NewJobStore(), logger, 30*time.Minute)

	r := router.New(&router.Config{
		RunsHandler:    runsHandler,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
