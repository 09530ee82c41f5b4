package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appgrid/appdex/internal/config"
	logpkg "github.com/appgrid/appdex/internal/logger"
	"github.com/appgrid/appdex/internal/metrics"
	"github.com/appgrid/appdex/internal/modelstore"
	"github.com/appgrid/appdex/internal/repository/catalog"
	"github.com/appgrid/appdex/internal/repository/querycache"
	chiTransport "github.com/appgrid/appdex/internal/transport/chi"
	healthuc "github.com/appgrid/appdex/internal/usecase/health"
	reviewuc "github.com/appgrid/appdex/internal/usecase/review"
	searchuc "github.com/appgrid/appdex/internal/usecase/search"
	suggestuc "github.com/appgrid/appdex/internal/usecase/suggest"
	"github.com/appgrid/appdex/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting appdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("model_dir", cfg.Model.Dir),
	)

	repo, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer repo.Close()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// The model is loaded once per process and shared read-only by all
	// handlers; a rebuild takes effect on the next restart.
	store := modelstore.New(cfg.Model.Dir, logger)
	model, err := store.Load()
	if err != nil {
		logger.Fatal("Failed to load model artifacts", zap.Error(err))
	}
	if model == nil {
		logger.Warn("Vector model absent, search degrades to substring matching",
			zap.String("hint", "run `appdex reindex` after loading the catalog"))
	} else {
		logger.Info("Vector model loaded",
			zap.Int("documents", model.Len()),
			zap.Int("vocabulary", len(model.Vectorizer.Vocabulary)),
		)
	}

	// Pass nil interface (not typed nil pointer!) when the model is
	// absent. Go gotcha: (*tfidf.Model)(nil) wrapped in Ranker != nil.
	var ranker searchuc.Ranker
	if model != nil {
		ranker = model
	}

	searchSvc := searchuc.New(repo, ranker, logger).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cache, err := querycache.New(querycache.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			Prefix:   cfg.Cache.Prefix,
			TTL:      time.Duration(cfg.Cache.TTLSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to connect query cache", zap.Error(err))
		}
		defer cache.Close()
		searchSvc.WithCache(cache)
		cachePinger = cache
		logger.Info("Query cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	suggestSvc := suggestuc.New(repo, ranker, logger)
	reviewSvc := reviewuc.New(repo)
	healthSvc := healthuc.New(repo, cachePinger, model != nil)

	server := chiTransport.NewServer(
		searchSvc, suggestSvc, reviewSvc, healthSvc, repo, cfg.Auth.APIKeys, logger,
	)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
