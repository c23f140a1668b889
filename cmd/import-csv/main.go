package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"faturas/internal/amqp"
	"faturas/internal/config"
	"faturas/internal/core"
	"faturas/internal/csvimport"
	applog "faturas/internal/log"
	"faturas/internal/services"
	"faturas/internal/storage"
)

// import-csv imports a statement export from disk, for backfilling months
// without going through the dashboard upload.
func main() {
	var (
		filePath   = flag.String("file", "", "path to the statement CSV export")
		month      = flag.String("month", "", "ISO month of the statement (YYYY-MM); empty goes to the Unknown bucket")
		monthName  = flag.String("month-name", "", "display name for the month (derived from -month when empty)")
		skipHeader = flag.Bool("skip-header", true, "treat the first row as column labels")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentStatement,
	})
	applog.SetDefault(logger)

	if *filePath == "" {
		logger.Error("Missing -file argument")
		flag.Usage()
		os.Exit(2)
	}

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

	var publisher services.ImportPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, places will wait for the next sweep", applog.ErrAttr(err))
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}
	svc := services.NewStatementService(repo, publisher)

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Error("Failed to open statement file", applog.ErrAttr(err), "path", *filePath)
		os.Exit(1)
	}
	txns := csvimport.ParseStatement(f, *skipHeader)
	f.Close()

	if !core.ValidISOMonth(*month) && *month != "" {
		logger.Warn("Invalid ISO month, importing into the Unknown bucket", "month", *month)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.Import(ctx, filepath.Base(*filePath), *month, *monthName, nil, txns)
	if err != nil {
		logger.Error("Import failed", applog.ErrAttr(err), "path", *filePath)
		os.Exit(1)
	}
	logger.Info("Statement imported",
		"statement_id", result.StatementID,
		"transactions", result.TotalTransactions)
}
