package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"faturas/internal/core"
	"faturas/internal/summary"
)

// CreateStatement inserts a statement and its transaction rows in one
// transaction and returns the new statement ID.
func (r *Repository) CreateStatement(ctx context.Context, st core.Statement) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO statements (month, file_name, month_name, total_amount, total_transactions)
		VALUES (?, ?, ?, ?, ?)`,
		st.Month, st.FileName, st.MonthName, st.TotalAmount, st.TotalTransactions,
	)
	if err != nil {
		return 0, fmt.Errorf("insert statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("statement id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (statement_id, position, date, place, category, owner, amount, installment_current, installment_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range st.Transactions {
		var current, total sql.NullInt64
		if t.Installments != nil {
			current = sql.NullInt64{Int64: int64(t.Installments.Current), Valid: true}
			total = sql.NullInt64{Int64: int64(t.Installments.Total), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, t.Date, t.Place, t.Category, t.Owner, t.Amount, current, total); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement saved",
		"statement_id", id,
		"file_name", st.FileName,
		"month", st.Month,
		"transactions", len(st.Transactions))

	return id, nil
}

// Years lists the distinct 4-digit year prefixes of statement months,
// most recent first. Statements without a month are excluded.
func (r *Repository) Years(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT substr(month, 1, 4) AS year
		FROM statements
		WHERE month <> ''
		ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	years := make([]string, 0, 4)
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		if core.ValidYear(y) {
			years = append(years, y)
		}
	}
	return years, rows.Err()
}

// StatementTotals sums statement total amounts per ISO month for a year.
// Statements without a month are reported under the empty key so the
// summary can place them in the unknown bucket.
func (r *Repository) StatementTotals(ctx context.Context, year string) ([]summary.StatementRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, MAX(month_name), COALESCE(SUM(total_amount), 0)
		FROM statements
		WHERE month LIKE ? || '-%' OR month = ''
		GROUP BY month`, year)
	if err != nil {
		return nil, fmt.Errorf("query statement totals: %w", err)
	}
	defer rows.Close()

	var out []summary.StatementRow
	for rows.Next() {
		var row summary.StatementRow
		if err := rows.Scan(&row.Month, &row.MonthName, &row.Total); err != nil {
			return nil, fmt.Errorf("scan statement total: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InstallmentTotals sums the amounts of installment transactions (total
// above one, current above zero) per ISO month for a year.
func (r *Repository) InstallmentTotals(ctx context.Context, year string) ([]summary.InstallmentRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.month, COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		WHERE (s.month LIKE ? || '-%' OR s.month = '')
		  AND t.installment_total > 1
		  AND t.installment_current > 0
		GROUP BY s.month`, year)
	if err != nil {
		return nil, fmt.Errorf("query installment totals: %w", err)
	}
	defer rows.Close()

	var out []summary.InstallmentRow
	for rows.Next() {
		var row summary.InstallmentRow
		if err := rows.Scan(&row.Month, &row.Amount); err != nil {
			return nil, fmt.Errorf("scan installment total: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CategoryTotals sums transaction amounts per month and effective
// category code for a year. The mapping category wins over the embedded
// transaction category when present and non-empty; the join key is the
// trimmed, upper-cased merchant string on both sides.
func (r *Repository) CategoryTotals(ctx context.Context, year string) ([]summary.CategoryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.month,
		       UPPER(TRIM(CASE
		           WHEN m.category IS NOT NULL AND TRIM(m.category) <> '' THEN m.category
		           ELSE t.category
		       END)) AS code,
		       COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		LEFT JOIN mappings m ON m.place_key = UPPER(TRIM(t.place))
		WHERE s.month LIKE ? || '-%'
		GROUP BY s.month, code`, year)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var out []summary.CategoryRow
	for rows.Next() {
		var row summary.CategoryRow
		if err := rows.Scan(&row.Month, &row.Code, &row.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TransactionsForMonth lists the transactions of statements with the
// given ISO month, or of statements without a month when month is "".
// Rows pass through the stored-data sanitizer on the way out.
func (r *Repository) TransactionsForMonth(ctx context.Context, month string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.date, t.place, t.category, t.owner, t.amount, t.installment_current, t.installment_total
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		WHERE s.month = ?
		ORDER BY s.id, t.position`, month)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]core.Transaction, 0, 32)
	for rows.Next() {
		var t core.Transaction
		var current, total sql.NullInt64
		if err := rows.Scan(&t.Date, &t.Place, &t.Category, &t.Owner, &t.Amount, &current, &total); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if current.Valid && total.Valid {
			t.Installments = &core.Installment{Current: int(current.Int64), Total: int(total.Int64)}
		}
		txns = append(txns, core.SanitizeStored(t))
	}
	return txns, rows.Err()
}

// DistinctPlaces lists every distinct non-empty merchant string across
// all statements.
func (r *Repository) DistinctPlaces(ctx context.Context) ([]string, error) {
	return r.queryPlaces(ctx, `
		SELECT DISTINCT place FROM transactions
		WHERE TRIM(place) <> ''
		ORDER BY place`)
}

// StatementPlaces lists the distinct non-empty merchant strings of one
// statement.
func (r *Repository) StatementPlaces(ctx context.Context, statementID int64) ([]string, error) {
	return r.queryPlaces(ctx, `
		SELECT DISTINCT place FROM transactions
		WHERE statement_id = ? AND TRIM(place) <> ''
		ORDER BY place`, statementID)
}

func (r *Repository) queryPlaces(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
