package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"faturas/internal/classify"
	"faturas/internal/config"
	"faturas/internal/core"
	"faturas/internal/export"
	applog "faturas/internal/log"
	"faturas/internal/storage"
)

// categorize trains a naive-Bayes classifier on the labeled merchant
// mappings, logs category suggestions for the pending ones, and exports
// the training samples. Suggestions are never applied automatically; the
// user confirms them from the dashboard.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentClassifier,
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

	ctx := context.Background()
	labeled, err := repo.LabeledMappings(ctx)
	if err != nil {
		logger.Error("Failed to load labeled mappings", applog.ErrAttr(err))
		os.Exit(1)
	}
	samples := classify.Samples(labeled)

	if err := export.WriteTrainingFile(cfg.TrainingOutputPath, samples); err != nil {
		logger.Error("Failed to write training samples", applog.ErrAttr(err), "path", cfg.TrainingOutputPath)
		os.Exit(1)
	}
	logger.Info("Training samples written", "path", cfg.TrainingOutputPath, "count", len(samples))

	if cfg.SheetsConfigured() {
		exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", applog.ErrAttr(err))
			os.Exit(1)
		}
		if err := exporter.Append(ctx, samples); err != nil {
			logger.Error("Failed to export training samples to sheet", applog.ErrAttr(err))
			os.Exit(1)
		}
	}

	classifier, err := classify.Train(samples)
	if errors.Is(err, classify.ErrNotEnoughClasses) {
		logger.Warn("Not enough labeled categories to classify, skipping suggestions",
			"samples", len(samples))
		return
	}
	if err != nil {
		logger.Error("Failed to train classifier", applog.ErrAttr(err))
		os.Exit(1)
	}

	pending, err := repo.MappingsByStatus(ctx, core.StatusPending)
	if err != nil {
		logger.Error("Failed to load pending mappings", applog.ErrAttr(err))
		os.Exit(1)
	}

	for _, suggestion := range classifier.Suggest(pending) {
		logger.Info("Category suggestion",
			"place_key", suggestion.Mapping.PlaceKey,
			"category", suggestion.Category,
			"score", suggestion.Score)
	}
	logger.Info("Categorization complete", "pending", len(pending))
}
