package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"faturas/internal/core"
	"faturas/internal/summary"
)

type importRequest struct {
	FileName          string   `json:"fileName"`
	Month             string   `json:"month"`
	MonthName         string   `json:"monthName"`
	TotalAmount       *float64 `json:"totalAmount"`
	TotalTransactions *int     `json:"totalTransactions"`
	Transactions      []any    `json:"transactions"`
}

type summaryResponse struct {
	SelectedYear string                 `json:"selectedYear"`
	Years        []string               `json:"years"`
	Summary      []summary.MonthSummary `json:"summary"`
}

type categorySummaryResponse struct {
	SelectedYear string                  `json:"selectedYear"`
	Years        []string                `json:"years"`
	Categories   []string                `json:"categories"`
	Summary      []summary.CategoryMonth `json:"summary"`
}

type transactionView struct {
	core.Transaction
	CleanName string `json:"cleanName"`
}

type transactionsResponse struct {
	Month        string            `json:"month"`
	MonthName    string            `json:"monthName"`
	Transactions []transactionView `json:"transactions"`
}

// handleImportStatement persists an uploaded statement. Raw transaction
// entries pass through the sanitizer; entries that are not objects are
// dropped rather than failing the upload. The declared totalAmount is
// stored as sent; totalTransactions is recomputed to match the stored
// transaction list.
func (s *Server) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	txns := make([]core.Transaction, 0, len(req.Transactions))
	for _, raw := range req.Transactions {
		if tx := core.SanitizeTransaction(raw); tx != nil {
			txns = append(txns, *tx)
		}
	}

	fileName := sanitizeInput(req.FileName)
	res, err := s.importer.Import(r.Context(), fileName, strings.TrimSpace(req.Month), sanitizeInput(req.MonthName), req.TotalAmount, txns)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyFileName):
			errorJSON(w, http.StatusBadRequest, "fileName is required")
		case errors.Is(err, core.ErrNoTransactions):
			errorJSON(w, http.StatusBadRequest, "transactions are required")
		default:
			slog.ErrorContext(r.Context(), "Statement import failed",
				"error", err, "file_name", fileName)
			errorJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	atomic.AddInt64(&s.metrics.statementsSaved, 1)
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, res)
}

// handleSummary serves the month-bucketed statements summary for a year.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	requested := queryYear(r)

	if cached, found := s.summaryCache.Get(requested); found {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		respondJSON(w, http.StatusOK, cached)
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	years, err := s.statements.Years(r.Context())
	if err != nil {
		storageError(w, r, err, "list years")
		return
	}
	year := summary.SelectYear(requested, years)

	stmts, err := s.statements.StatementTotals(r.Context(), year)
	if err != nil {
		storageError(w, r, err, "statement totals")
		return
	}
	insts, err := s.statements.InstallmentTotals(r.Context(), year)
	if err != nil {
		storageError(w, r, err, "installment totals")
		return
	}

	resp := summaryResponse{
		SelectedYear: year,
		Years:        years,
		Summary:      summary.Build(year, stmts, insts),
	}
	s.summaryCache.Set(requested, resp)
	respondJSON(w, http.StatusOK, resp)
}

// handleCategorySummary serves per-category month totals for a year.
func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	requested := queryYear(r)

	if cached, found := s.categoryCache.Get(requested); found {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		respondJSON(w, http.StatusOK, cached)
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	years, err := s.statements.Years(r.Context())
	if err != nil {
		storageError(w, r, err, "list years")
		return
	}
	year := summary.SelectYear(requested, years)

	codes, err := s.categories.CategoryCodes(r.Context())
	if err != nil {
		storageError(w, r, err, "list category codes")
		return
	}
	rows, err := s.statements.CategoryTotals(r.Context(), year)
	if err != nil {
		storageError(w, r, err, "category totals")
		return
	}

	resp := categorySummaryResponse{
		SelectedYear: year,
		Years:        years,
		Categories:   codes,
		Summary:      summary.BuildCategories(year, rows, codes),
	}
	s.categoryCache.Set(requested, resp)
	respondJSON(w, http.StatusOK, resp)
}

// handleTransactions lists the transactions of one month with resolved
// merchant names and effective categories. month=unknown selects
// statements without a month.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	param := strings.TrimSpace(r.URL.Query().Get("month"))
	if param == "" {
		errorJSON(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	dbMonth := param
	monthName := core.MonthName(param)
	if strings.EqualFold(param, "unknown") {
		dbMonth = ""
		monthName = core.UnknownMonthLabel
	} else if !core.ValidISOMonth(param) {
		errorJSON(w, http.StatusBadRequest, "month must be YYYY-MM or unknown")
		return
	}

	txns, err := s.statements.TransactionsForMonth(r.Context(), dbMonth)
	if err != nil {
		storageError(w, r, err, "list transactions")
		return
	}

	keys := make([]string, 0, len(txns))
	seen := make(map[string]bool, len(txns))
	for _, tx := range txns {
		key := core.PlaceKey(tx.Place)
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	mappings, err := s.mappings.MappingsForKeys(r.Context(), keys)
	if err != nil {
		storageError(w, r, err, "resolve mappings")
		return
	}

	views := make([]transactionView, 0, len(txns))
	for _, tx := range txns {
		view := transactionView{Transaction: tx, CleanName: tx.Place}
		if m, ok := mappings[core.PlaceKey(tx.Place)]; ok {
			if m.CleanName != "" {
				view.CleanName = m.CleanName
			}
			if strings.TrimSpace(m.Category) != "" {
				view.Category = m.Category
			}
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, transactionsResponse{
		Month:        param,
		MonthName:    monthName,
		Transactions: views,
	})
}
