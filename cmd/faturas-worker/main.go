package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"faturas/internal/amqp"
	"faturas/internal/config"
	applog "faturas/internal/log"
	"faturas/internal/storage"
	"faturas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting faturas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.ErrAttr(err))
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.ErrAttr(err), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.ErrAttr(err))
		os.Exit(1)
	}
	defer amqpClient.Close()

	extractWorker := worker.NewExtractWorker(repo, cfg.ExtractBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeStatementImported(gctx, func(msg *amqp.StatementImportedMessage) error {
			return extractWorker.HandleStatementImported(gctx, msg)
		})
	})
	g.Go(func() error {
		// Sweep on a ticker to recover from lost messages.
		return extractWorker.RunSweeper(gctx, cfg.SweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", applog.ErrAttr(err))
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
