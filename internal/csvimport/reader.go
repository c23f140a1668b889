// Package csvimport parses raw credit-card statement CSV exports into
// canonical transactions. Source files are inconsistently formatted, so
// every parser here is best-effort: invalid fields become safe defaults
// and nothing in this package returns an error.
package csvimport

import (
	"encoding/csv"
	"errors"
	"io"

	"faturas/internal/core"
)

// ReadRows scans semicolon-delimited, double-quote-escaped text into raw
// field rows. CRLF and LF line endings and ragged field counts are all
// tolerated; rows the scanner cannot recover are skipped.
func ReadRows(r io.Reader) [][]string {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return rows
		}
		rows = append(rows, record)
	}
}

// ParseStatement reads a whole statement blob into transactions.
// When skipHeader is set the first row is treated as column labels.
func ParseStatement(r io.Reader, skipHeader bool) []core.Transaction {
	rows := ReadRows(r)
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	txns := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, ParseRow(row))
	}
	return txns
}
