package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/storage"
	"skillbridge/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.RequireStorage(); err != nil {
		log.Fatalf("worker config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	c, err := app.NewContainer(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	store, err := storage.NewS3Store(ctx, cfg.Storage, int64(cfg.App.MaxUploadBytes))
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}

	qc, err := queue.Dial(cfg.Queue, logger)
	if err != nil {
		log.Fatalf("failed to connect to queue: %v", err)
	}
	defer qc.Close()

	msgs, err := qc.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	proc := worker.NewProcessor(worker.ProcessorDeps{
		Analyzer:  c.Analysis,
		Store:     store,
		Publisher: qc,
		TempDir:   cfg.App.UploadDir,
		Timeout:   cfg.App.RequestTimeout,
		Logger:    logger,
	})
	pool := worker.NewPool(cfg.Queue.Workers, cfg.Queue.Workers)
	pool.SetRateLimit(cfg.Queue.RateLimit)

	logger.Printf("worker=analysis status=started queue=%s workers=%d rate_limit=%d", cfg.Queue.RequestQueue, pool.Workers(), cfg.Queue.RateLimit)
	proc.Consume(ctx, msgs, pool)
	logger.Printf("worker=analysis status=stopped")
}
