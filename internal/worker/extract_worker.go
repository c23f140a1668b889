package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"faturas/internal/amqp"
	"faturas/internal/storage"
)

// ExtractWorker keeps the merchant-mapping table in sync with imported
// statements: every distinct merchant string gets a pending mapping the
// user can label from the dashboard.
type ExtractWorker struct {
	storage   *storage.Repository
	batchSize int
}

func NewExtractWorker(storage *storage.Repository, batchSize int) *ExtractWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExtractWorker{
		storage:   storage,
		batchSize: batchSize,
	}
}

// HandleStatementImported processes a single statement imported message
// from AMQP, extracting that statement's merchants.
func (w *ExtractWorker) HandleStatementImported(ctx context.Context, msg *amqp.StatementImportedMessage) error {
	slog.InfoContext(ctx, "Processing statement imported message",
		"statement_id", msg.StatementID,
		"month", msg.Month)

	places, err := w.storage.StatementPlaces(ctx, msg.StatementID)
	if err != nil {
		return fmt.Errorf("load statement places: %w", err)
	}

	inserted, err := w.insertBatched(ctx, places)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Statement places extracted",
		"statement_id", msg.StatementID,
		"places", len(places),
		"new_mappings", inserted)
	return nil
}

// Sweep extracts merchants from every statement in storage. This is a
// backup mechanism in case AMQP messages are lost.
func (w *ExtractWorker) Sweep(ctx context.Context) error {
	places, err := w.storage.DistinctPlaces(ctx)
	if err != nil {
		return fmt.Errorf("load distinct places: %w", err)
	}

	inserted, err := w.insertBatched(ctx, places)
	if err != nil {
		return err
	}

	if inserted > 0 {
		slog.InfoContext(ctx, "Sweep found unmapped places",
			"places", len(places),
			"new_mappings", inserted)
	}
	return nil
}

// RunSweeper sweeps on a ticker until the context is cancelled. An
// initial sweep runs immediately to recover from worker downtime.
func (w *ExtractWorker) RunSweeper(ctx context.Context, interval time.Duration) error {
	if err := w.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sweep failed", "error", err)
			}
		}
	}
}

func (w *ExtractWorker) insertBatched(ctx context.Context, places []string) (int, error) {
	inserted := 0
	for start := 0; start < len(places); start += w.batchSize {
		end := start + w.batchSize
		if end > len(places) {
			end = len(places)
		}
		n, err := w.storage.InsertPendingMappings(ctx, places[start:end])
		if err != nil {
			return inserted, fmt.Errorf("insert pending mappings: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}
