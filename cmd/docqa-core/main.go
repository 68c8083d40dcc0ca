package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/arbor-labs/docqa-core/internal/adapters/driven/ai"
	"github.com/arbor-labs/docqa-core/internal/adapters/driven/postgres"
	redisqueue "github.com/arbor-labs/docqa-core/internal/adapters/driven/queue/redis"
	httpserver "github.com/arbor-labs/docqa-core/internal/adapters/driving/http"
	"github.com/arbor-labs/docqa-core/internal/chunker"
	"github.com/arbor-labs/docqa-core/internal/config"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driving"
	"github.com/arbor-labs/docqa-core/internal/core/services"
	"github.com/arbor-labs/docqa-core/internal/extract"
	"github.com/arbor-labs/docqa-core/internal/worker"
)

var version = "dev"

func main() {
	// Run mode from environment (RUN_MODE) or command line arg
	mode := os.Getenv("RUN_MODE")
	if mode == "" {
		mode = "all"
	}
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("docqa-core starting", "version", version, "mode", mode)

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// ===== PostgreSQL =====
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
		MaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := postgres.NewEmbeddingStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	logger.Info("postgres connected and schema initialized")

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	var taskQueue driven.TaskQueue
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			logger.Error("failed to create task queue", "error", err)
			os.Exit(1)
		}
		logger.Info("redis connected, uploads are processed in the background")
	} else {
		logger.Info("no REDIS_URL set, uploads are ingested synchronously")
	}

	// ===== AI providers =====
	aiFactory := ai.NewFactory()

	embedder, err := aiFactory.EmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		logger.Error("failed to create embedding service", "error", err)
		os.Exit(1)
	}
	if embedder == nil {
		logger.Error("embedding provider is not configured")
		os.Exit(1)
	}
	defer embedder.Close()
	logger.Info("embedding service ready", "model", embedder.Model(), "dimensions", embedder.Dimensions())

	llm, err := aiFactory.LLMService(cfg.LLMSettings())
	if err != nil {
		logger.Error("failed to create LLM service", "error", err)
		os.Exit(1)
	}
	if llm != nil {
		defer llm.Close()
		logger.Info("llm service ready", "model", llm.Model())
	} else {
		logger.Warn("llm provider not configured, answer synthesis disabled")
	}

	// ===== Core services =====
	splitter, err := chunker.New(chunker.Options{
		Size:     cfg.ChunkSize,
		Overlap:  cfg.ChunkOverlap,
		Disabled: cfg.ChunkingOff,
	})
	if err != nil {
		logger.Error("invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	registry := extract.NewDefaultRegistry()
	logger.Info("extractors registered", "formats", registry.Formats())

	ingestService := services.NewIngestService(registry, splitter, embedder, store, cfg.Collection, logger)
	queryService := services.NewQueryService(embedder, store, llm, cfg.Collection, cfg.RetrievalK, logger)

	switch mode {
	case "server":
		runServer(cfg, ingestService, queryService, taskQueue, db, logger)

	case "worker":
		if taskQueue == nil {
			logger.Error("worker mode requires REDIS_URL")
			os.Exit(1)
		}
		runWorker(ctx, cfg, taskQueue, ingestService, logger)

	case "all":
		if taskQueue != nil {
			go runWorker(ctx, cfg, taskQueue, ingestService, logger)
		}
		runServer(cfg, ingestService, queryService, taskQueue, db, logger)

	default:
		logger.Error("unknown mode", "mode", mode)
		os.Exit(1)
	}
}

func runServer(
	cfg *config.Config,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	taskQueue driven.TaskQueue,
	db *postgres.DB,
	logger *slog.Logger,
) {
	serverCfg := httpserver.Config{
		Host:           cfg.HTTPHost,
		Port:           cfg.HTTPPort,
		Version:        version,
		Collection:     cfg.Collection,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}

	server := httpserver.NewServer(serverCfg, ingestService, queryService, taskQueue, db)

	logger.Info("api server starting", "port", cfg.HTTPPort)
	if err := server.Start(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runWorker(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	ingestService driving.IngestService,
	logger *slog.Logger,
) {
	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Ingester:       ingestService,
		Logger:         logger,
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
		RetryAttempts:  cfg.WorkerRetryAttempts,
		RetryDelay:     cfg.WorkerRetryDelay,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, processing queued uploads")

	<-ctx.Done()
	w.Stop()
}
