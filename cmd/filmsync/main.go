/*
Filmsync is the entry point for the catalog-to-search-index incremental
synchronization service.

It polls the relational film/person/genre catalog for rows changed since
the last successful run, joins them into one document per film, and
bulk-writes the result to the search index.

Usage:

	go run cmd/filmsync/main.go

The environment variables are:

	DATABASE_URL          Postgres connection string (required)
	INDEX_HOSTS           Comma-separated Elasticsearch host URLs (required)
	INDEX_NAME            Index name reported in the startup log (default: movies); documents are always written to the "movies" index
	CACHE_MAIN_PATH       Main state-store file (default: ./cache/main.json)
	CACHE_PRODUCER_PATH   Producer state-store file
	CACHE_ENRICHER_PATH   Enricher state-store file
	CACHE_MERGER_PATH     Merger state-store file
	LOG_FILE_PATH         Log file, written alongside stdout (default: ./log/etl.log)
	DEBUG                 Enable debug-level logging (default: false)
	LIMIT_SIZE            Page size for every paged query (default: 100)
	SLEEP_PERIOD_SECONDS  Delay between outer runs (default: 60)
	HEALTH_PORT           Port for the /healthz and /readyz surface (default: 8090)
	RUN_LOCK_REDIS_URL    Optional Redis URL for the cross-host run lease

Startup Sequence:

 1. Config: Load and validate environment variables.
 2. Logger: Initialize structured JSON logging (slog) from the loaded config.
 3. Storage: Establish connections to Postgres and, optionally, Redis.
 4. Wiring: Build the state stores, executor, index loader, and orchestrator.
 5. Health: Start the liveness/readiness HTTP surface.
 6. Loop: Run the pipeline on a fixed cadence until signaled to stop.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/filmsync/internal/etl/indexloader"
	"github.com/taibuivan/filmsync/internal/etl/orchestrator"
	"github.com/taibuivan/filmsync/internal/platform/config"
	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/healthapi"
	pgstore "github.com/taibuivan/filmsync/internal/platform/postgres"
	redisstore "github.com/taibuivan/filmsync/internal/platform/redis"
	"github.com/taibuivan/filmsync/internal/platform/runlock"
	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Config and logger
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	writer := openLogWriter(cfg.LogFilePath)
	rawLog := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
	log := rawLog.With(slog.String("app", constants.AppName), slog.Int("pid", os.Getpid()))
	slog.SetDefault(log)

	log.Info("filmsync_initializing")
	log.Info("configuration_loaded",
		slog.String("index_name", cfg.IndexName),
		slog.Int("limit_size", cfg.LimitSize),
		slog.Bool("run_lock_enabled", cfg.HasRunLock()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 2. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 3. Optional distributed run lock
	var rdb *redis.Client
	if cfg.HasRunLock() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RunLockRedisURL, log)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// # 4. Search index
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.IndexHostList()})
	if err != nil {
		return fmt.Errorf("build elasticsearch client: %w", err)
	}
	loader := indexloader.New(esClient, log)

	// # 5. State stores, executor, lock, orchestrator
	stores := orchestrator.Stores{
		Main:     statestore.New(cfg.CacheMainPath),
		Producer: statestore.New(cfg.CacheProducerPath),
		Enricher: statestore.New(cfg.CacheEnricherPath),
		Merger:   statestore.New(cfg.CacheMergerPath),
	}
	exec := sqlexec.New(pool, log)

	var lock *runlock.Lock
	if rdb != nil {
		hostname, _ := os.Hostname()
		lock = runlock.New(rdb, "filmsync:run-lock", hostname)
	}

	orch := orchestrator.New(stores, exec, loader, lock, cfg.LimitSize, log)

	// # 6. Health server
	deps := healthapi.Dependencies{
		CheckDatabase: func() error { return pgstore.Ping(context.Background(), pool) },
	}
	if rdb != nil {
		deps.CheckCache = func() error { return redisstore.Ping(context.Background(), rdb) }
	}
	status := func() (healthapi.RunStatus, error) {
		state, _, err := stores.Main.GetString(constants.GlobalStateKey)
		if err != nil {
			return healthapi.RunStatus{}, err
		}
		watermark, _, err := stores.Main.GetString(constants.WatermarkKey)
		if err != nil {
			return healthapi.RunStatus{}, err
		}
		return healthapi.RunStatus{State: state, Watermark: watermark}, nil
	}

	healthServer := healthapi.NewServer(":"+cfg.HealthPort, log, deps, status)

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	shutdownErr := make(chan error, 1)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			shutdownErr <- fmt.Errorf("health_server_crash: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	// # 7. Pipeline loop
	pipelineErr := make(chan error, 1)
	go func() {
		pipelineErr <- pipelineLoop(appCtx, orch, cfg, log)
	}()

	log.Info("filmsync_running", slog.String("health_port", cfg.HealthPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	case err := <-pipelineErr:
		return err
	}

	appCancel()

	log.Info("shutting_down_health_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := healthServer.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("health_server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}

// pipelineLoop runs the orchestrator on a fixed cadence until ctx is
// canceled. A run that fails is logged and retried on the next tick
// rather than crashing the process, matching main.py's outer try/except.
func pipelineLoop(ctx context.Context, orch *orchestrator.Orchestrator, cfg *config.Config, log *slog.Logger) error {
	period := time.Duration(cfg.SleepPeriodSeconds) * time.Second

	for {
		if err := orch.Run(ctx); err != nil && !errors.Is(err, orchestrator.ErrPriorRunInFlight) {
			log.ErrorContext(ctx, "pipeline_run_failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(period):
		}
	}
}

// openLogWriter tees structured logs to both stdout and the configured
// log file. If the file cannot be opened, logging falls back to stdout
// alone rather than blocking startup.
func openLogWriter(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, file)
}
