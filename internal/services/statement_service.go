package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"faturas/internal/core"
	"faturas/internal/storage"
)

// ImportPublisher notifies interested consumers that a statement landed.
type ImportPublisher interface {
	PublishStatementImported(ctx context.Context, statementID int64, month string) error
}

// StatementService orchestrates statement imports across SQLite and AMQP
type StatementService struct {
	storage   *storage.Repository
	publisher ImportPublisher
}

func NewStatementService(storage *storage.Repository, publisher ImportPublisher) *StatementService {
	return &StatementService{
		storage:   storage,
		publisher: publisher,
	}
}

// ImportResult reports what a statement import persisted.
type ImportResult struct {
	StatementID       int64 `json:"statementId"`
	TotalTransactions int   `json:"totalTransactions"`
}

// Import persists a statement and publishes an import message. Transactions
// are expected to be sanitized already; the month is reduced to "" when it
// is not a valid YYYY-MM key so the statement lands in the unknown bucket.
// The declared total is stored as sent; when absent or non-finite it falls
// back to the transaction sum. The transaction count is always recomputed
// so that it matches the stored list.
func (s *StatementService) Import(ctx context.Context, fileName, month, monthName string, declaredTotal *float64, txns []core.Transaction) (ImportResult, error) {
	if !core.ValidISOMonth(month) {
		month = ""
	}
	if monthName == "" {
		monthName = core.MonthName(month)
	}

	total := 0.0
	for _, tx := range txns {
		total += tx.Amount
	}
	if declaredTotal != nil && !math.IsNaN(*declaredTotal) && !math.IsInf(*declaredTotal, 0) {
		total = *declaredTotal
	}

	st := core.Statement{
		Month:             month,
		FileName:          fileName,
		MonthName:         monthName,
		TotalAmount:       total,
		TotalTransactions: len(txns),
		Transactions:      txns,
	}
	if err := st.Validate(); err != nil {
		return ImportResult{}, err
	}

	// Save to SQLite first (fast, reliable)
	id, err := s.storage.CreateStatement(ctx, st)
	if err != nil {
		return ImportResult{}, fmt.Errorf("save statement: %w", err)
	}

	// Publish async extraction message (non-blocking)
	if err := s.publishImportMessage(ctx, id, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish import message",
			"statement_id", id, "error", err)
		// Don't fail the request - statement is saved locally
	}

	return ImportResult{StatementID: id, TotalTransactions: len(txns)}, nil
}

func (s *StatementService) publishImportMessage(ctx context.Context, id int64, month string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping import message")
		return nil
	}

	return s.publisher.PublishStatementImported(ctx, id, month)
}

// Close closes the underlying storage connection
func (s *StatementService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close statement service: %w", err)
		}
	}
	return nil
}
