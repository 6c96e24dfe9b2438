package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/duhsoft/aigateway/internal/cache"
	"github.com/duhsoft/aigateway/internal/config"
	"github.com/duhsoft/aigateway/internal/database"
	"github.com/duhsoft/aigateway/internal/embedding"
	"github.com/duhsoft/aigateway/internal/finetune"
	"github.com/duhsoft/aigateway/internal/llm"
	"github.com/duhsoft/aigateway/internal/queue"
	"github.com/duhsoft/aigateway/internal/queue/workers"
	"github.com/duhsoft/aigateway/internal/storage"
	"github.com/duhsoft/aigateway/internal/training"
	"github.com/duhsoft/aigateway/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	gateway := llm.NewGateway(cfg.AI)
	defer gateway.Close()
	responseClient := llm.NewResponseClient(cfg.AI)
	store := storage.NewLocalStorage(cfg.Uploads.Dir)
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	vs := vectorstore.NewPgVectorStore(db)
	embedSvc := embedding.NewService(gateway, cfg.AI.EmbeddingDim)
	trainingSvc := training.NewService(db, store, vs, queueClient, cache.NewCache(rdb))
	finetuneSvc := finetune.NewService(db, store, responseClient, queueClient)

	// Pick up documents a previous worker left mid-pipeline.
	if n, err := trainingSvc.RequeueStale(ctx); err != nil {
		slog.Warn("stale document requeue failed", "error", err)
	} else if n > 0 {
		slog.Info("requeued stale documents", "count", n)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	ingestWorker := workers.NewIngestWorker(trainingSvc, store, embedSvc, vs, cfg.Uploads.ChunkSize)
	finetuneWorker := workers.NewFinetuneWorker(finetuneSvc, queueClient)

	registry.Register(queue.TypeDocumentProcess, asynq.HandlerFunc(ingestWorker.ProcessTask))
	registry.Register(queue.TypeFinetunePoll, asynq.HandlerFunc(finetuneWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
