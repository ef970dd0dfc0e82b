package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"convertd/internal/archive"
	"convertd/internal/audit"
	"convertd/internal/config"
	"convertd/internal/conversion"
	"convertd/internal/engine"
	"convertd/internal/httpapi"
	"convertd/internal/httpapi/handlers"
	"convertd/internal/pkg/logger"
	"convertd/internal/pkg/shutdown"
	"convertd/internal/repositories"
	"convertd/internal/stats"
	"convertd/internal/storage"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).LogFatal("invalid configuration", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "convertd",
		AddSource:   cfg.Log.Source,
	})

	log.Info("starting convertd", "version", version)

	ctx := context.Background()

	shutdownMgr := shutdown.NewManager(log, cfg.ShutdownTimeout)

	if err := os.MkdirAll(cfg.StagingDir, 0o700); err != nil {
		log.LogFatal("failed to prepare staging dir", err, "dir", cfg.StagingDir)
	}

	pandoc := engine.NewPandoc(cfg.PandocPath)
	if v, err := pandoc.Version(ctx); err != nil {
		// Conversions answer 500 until the binary is installed.
		log.Warn("conversion engine unavailable", "path", cfg.PandocPath, "error", err.Error())
	} else {
		log.Info("conversion engine found", "version", v)
	}

	var (
		opts   = []conversion.Option{conversion.WithRecordTimeout(cfg.RecordTimeout)}
		checks = map[string]handlers.HealthCheck{"engine": handlers.EngineCheck(pandoc)}
		hdeps  = handlers.Deps{
			MultipartMemory: cfg.MultipartMemory,
			Version:         version,
			Log:             log,
		}
	)

	// PostgreSQL: conversion audit log
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL")
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.LogFatal("failed to connect to PostgreSQL", err)
		}
		shutdownMgr.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		if err := pool.Ping(ctx); err != nil {
			log.LogFatal("failed to ping PostgreSQL", err)
		}

		repo := repositories.NewConversionRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.LogFatal("failed to create conversions table", err)
		}
		log.Info("PostgreSQL connected, audit log enabled")

		opts = append(opts, conversion.WithObserver(audit.NewRecorder(repo, log)))
		hdeps.Conversions = repo
		checks["postgres"] = handlers.PostgresCheck(pool)
	}

	// Redis: conversion counters
	if cfg.RedisAddr != "" {
		log.Info("connecting to Redis")
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.LogFatal("failed to ping Redis", err)
		}
		log.Info("Redis connected, stats enabled", "key", cfg.StatsKey)

		counter := stats.NewRedisCounter(rdb, cfg.StatsKey, log)
		opts = append(opts, conversion.WithObserver(counter))
		hdeps.Stats = counter
		checks["redis"] = handlers.RedisCheck(rdb)
	}

	// Storage provider: artifact archive
	sp, err := storage.NewProvider(ctx, cfg.Archive)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	if sp != nil {
		log.Info("artifact archive enabled", "provider", sp.Provider())
		opts = append(opts, conversion.WithArchiver(archive.New(sp)))
		hdeps.Archive = sp
		checks["archive"] = handlers.StorageCheck(sp)
	}

	hdeps.Converter = conversion.NewService(pandoc, cfg.StagingDir, log, opts...)
	hdeps.HealthChecks = checks

	router := httpapi.NewRouter(httpapi.Deps{
		Handlers:       hdeps,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	// No write timeout: a conversion holds its request until the engine exits.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	if err := shutdownMgr.Wait(ctx); err != nil {
		log.LogError(ctx, "shutdown finished with errors", err)
		os.Exit(1)
	}
}
