package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"faturas/internal/config"
	applog "faturas/internal/log"
	"faturas/internal/storage"
	"faturas/internal/worker"
)

// extract-places runs one extraction pass over every stored statement,
// creating a pending mapping for each merchant that has none yet.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

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

	extractWorker := worker.NewExtractWorker(repo, cfg.ExtractBatchSize)
	if err := extractWorker.Sweep(context.Background()); err != nil {
		logger.Error("Place extraction failed", applog.ErrAttr(err))
		os.Exit(1)
	}
	logger.Info("Place extraction complete")
}
