package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/config"
	dbRedis "github.com/kailas-cloud/storefind/internal/db/redis"
	"github.com/kailas-cloud/storefind/internal/domain"
	logpkg "github.com/kailas-cloud/storefind/internal/logger"
	"github.com/kailas-cloud/storefind/internal/metrics"
	"github.com/kailas-cloud/storefind/internal/repository/embcache"
	"github.com/kailas-cloud/storefind/internal/repository/postgres"
	chiTransport "github.com/kailas-cloud/storefind/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/storefind/internal/transport/openai"
	"github.com/kailas-cloud/storefind/internal/usecase/filtermap"
	healthuc "github.com/kailas-cloud/storefind/internal/usecase/health"
	"github.com/kailas-cloud/storefind/internal/usecase/pipeline"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
	"github.com/kailas-cloud/storefind/internal/usecase/rewrite"
	"github.com/kailas-cloud/storefind/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting storefind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("table", cfg.Database.Table),
	)

	ctx := context.Background()

	// Product datastore
	store, err := postgres.NewStore(ctx, postgres.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: int32(cfg.Database.MaxConns),
		Tuning: postgres.TuningConfig{
			Enabled:         cfg.Database.Tuning.Enabled,
			WorkMem:         cfg.Database.Tuning.WorkMem,
			ParallelWorkers: cfg.Database.Tuning.ParallelWorkers,
		},
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Embedding provider, optionally wrapped in the query-embedding cache
	providerEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = providerEmbedder
	// Pass nil interface (not typed nil pointer!) if cache is not configured.
	var cachePinger healthuc.CachePinger
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		embedder = embcache.New(
			providerEmbedder, cacheStore,
			time.Duration(cfg.Cache.TTLHours)*time.Hour, logger,
		)
		cachePinger = cacheStore
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Query rewriter: completion model plus regex fallback
	var completer rewrite.Completer
	if cfg.Rewrite.Model != "" {
		completer = openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:  cfg.Rewrite.APIKey,
			BaseURL: cfg.Rewrite.BaseURL,
			Model:   cfg.Rewrite.Model,
			Logger:  logger,
		})
	}
	rewriter := rewrite.New(completer, rewrite.Config{
		Timeout:         time.Duration(cfg.Rewrite.TimeoutMs) * time.Millisecond,
		MaxRetries:      cfg.Rewrite.MaxRetries,
		FallbackToRegex: *cfg.Rewrite.FallbackToRegex,
		ForceFallback:   cfg.Rewrite.ForceFallback,
		Temperature:     cfg.Rewrite.Temperature,
		MaxTokens:       cfg.Rewrite.MaxTokens,
	}, logger)

	mapper := filtermap.New(filtermap.Config{
		ValidateRanges:   *cfg.Search.ValidateRanges,
		AllowNullFilters: true,
	})

	retriever := retrieve.New(store, embedder, retrieve.Config{
		Table:        cfg.Database.Table,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}, logger)

	searchSvc := pipeline.New(rewriter, mapper, retriever, logger)
	healthSvc := healthuc.New(store, providerEmbedder, cachePinger)

	server := chiTransport.NewServer(searchSvc, retriever, healthSvc, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
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
}
