package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytkit/yttools/internal/api/handler"
	"github.com/ytkit/yttools/internal/api/middleware"
	"github.com/ytkit/yttools/internal/config"
	"github.com/ytkit/yttools/internal/infrastructure/cache"
	"github.com/ytkit/yttools/internal/usecase"
	"github.com/ytkit/yttools/internal/youtube"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	transcriptCache := cache.New(context.Background(), cache.Options{
		Enabled:   cfg.Cache.Enabled,
		TTL:       cfg.Cache.TTL,
		MaxSize:   cfg.Cache.MaxSize,
		Backend:   cfg.Cache.Backend,
		RedisAddr: cfg.Cache.RedisAddr,
	}, logger)
	defer transcriptCache.Close()

	logger.Info("cache initialized",
		slog.Bool("enabled", transcriptCache.Enabled()),
		slog.String("backend", transcriptCache.BackendName()),
		slog.Duration("ttl", transcriptCache.TTL()),
		slog.Int("max_size", transcriptCache.MaxSize()),
	)

	client := youtube.NewClient(youtube.ClientConfig{
		Timeout:   cfg.YouTube.Timeout,
		UserAgent: cfg.YouTube.UserAgent,
	}, logger)

	svc := usecase.NewTranscriptService(client, client, transcriptCache, logger)

	r := setupRouter(cfg, logger, svc, transcriptCache)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	svc usecase.TranscriptService,
	transcriptCache *cache.TranscriptCache,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst))
	}

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	youtubeHandler := handler.NewYouTubeHandler(svc)
	cacheHandler := handler.NewCacheHandler(transcriptCache)

	r.Route("/api/v1/youtube", func(r chi.Router) {
		r.Get("/metadata", youtubeHandler.Metadata)
		r.Get("/captions", youtubeHandler.Captions)
		r.Get("/captions/batch", youtubeHandler.BatchCaptions)
		r.Get("/timestamps", youtubeHandler.Timestamps)
		r.Get("/search", youtubeHandler.Search)
		r.Get("/chapters", youtubeHandler.Chapters)

		r.Get("/cache/stats", cacheHandler.Stats)
		r.Delete("/cache/clear", cacheHandler.Clear)
		r.Post("/cache/cleanup", cacheHandler.Cleanup)
	})

	return r
}
