package csvimport

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"faturas/internal/core"
)

// Positional statement columns.
const (
	colDate = iota
	colPlace
	colOwner
	colAmount
	colInstallments
)

var (
	dateSepRe     = regexp.MustCompile(`[/-]`)
	installmentRe = regexp.MustCompile(`(?i)^(\d+)\s*(?:de|/)\s*(\d+)$`)
	amountKeepRe  = regexp.MustCompile(`[^0-9,.\-]`)
)

// ParseRow converts one raw field row into a canonical transaction.
// Missing trailing columns are treated as empty.
func ParseRow(fields []string) core.Transaction {
	return core.Transaction{
		Date:         ParseDate(field(fields, colDate)),
		Place:        strings.TrimSpace(field(fields, colPlace)),
		Owner:        core.NormalizeOwner(field(fields, colOwner)),
		Amount:       ParseAmount(field(fields, colAmount)),
		Installments: ParseInstallments(field(fields, colInstallments)),
	}
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// ParseDate accepts slash- or dash-separated day/month/year tokens (or
// year-first when the leading token has 4 digits) and returns a strict
// "YYYY-MM-DD" string. Calendar-invalid dates such as 31/02/2024 yield "".
func ParseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := dateSepRe.Split(s, -1)
	if len(parts) != 3 {
		return ""
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ""
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if len(strings.TrimSpace(parts[0])) == 4 {
		// Year-first layout.
		year, month, day = nums[0], nums[1], nums[2]
	}
	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	// time.Date normalizes overflow (Feb 30 becomes Mar 1); a round-trip
	// mismatch means the calendar date did not exist.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ParseAmount strips everything but digits, comma, dot and minus, converts
// a comma decimal separator to a dot, and parses the result. Anything
// unparseable yields 0.
func ParseAmount(s string) float64 {
	s = amountKeepRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseInstallments accepts "<n> de <m>" and "<n>/<m>" notations.
// Anything else yields nil.
func ParseInstallments(s string) *core.Installment {
	m := installmentRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	current, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &core.Installment{Current: current, Total: total}
}
