// Package summary folds SQL aggregation rows into the month-bucketed
// shapes the dashboard consumes. Bucket shaping invariants live here:
// exactly 12 zero-filled January-December buckets for a valid year, the
// unknown-month bucket appended after them, and monetary values rounded
// to 2 decimals only at assembly time.
package summary

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"faturas/internal/core"
)

// StatementRow is a per-ISO-month statement total as read from storage.
type StatementRow struct {
	Month     string
	MonthName string
	Total     float64
}

// InstallmentRow is a per-ISO-month sum of installment transaction amounts.
type InstallmentRow struct {
	Month  string
	Amount float64
}

// CategoryRow is a per-month, per-category-code transaction sum.
type CategoryRow struct {
	Month string
	Code  string
	Total float64
}

// MonthSummary is one bucket of the statements summary.
type MonthSummary struct {
	Month                string  `json:"month"`
	MonthName            string  `json:"monthName"`
	TotalAmount          float64 `json:"totalAmount"`
	InstallmentAmount    float64 `json:"installmentAmount"`
	NonInstallmentAmount float64 `json:"nonInstallmentAmount"`
}

// CategoryMonth is one bucket of the category summary: every known
// category code maps to a total, zero when nothing matched.
type CategoryMonth struct {
	Month     string             `json:"month"`
	MonthName string             `json:"monthName"`
	Totals    map[string]float64 `json:"totals"`
}

// SelectYear resolves the effective year: the requested one when it is
// available, otherwise the most recent available year, otherwise "".
// Years are assumed sorted descending.
func SelectYear(requested string, years []string) string {
	if core.ValidYear(requested) && slices.Contains(years, requested) {
		return requested
	}
	if len(years) > 0 {
		return years[0]
	}
	return ""
}

// MonthsOf lists the 12 canonical ISO months of a year in order.
func MonthsOf(year string) []string {
	months := make([]string, 0, 12)
	for m := 1; m <= 12; m++ {
		months = append(months, fmt.Sprintf("%s-%02d", year, m))
	}
	return months
}

// Build assembles the statements summary for a year. Rows with an empty
// month key land in the trailing unknown bucket; months absent from the
// data are synthesized with zero values.
func Build(year string, stmts []StatementRow, insts []InstallmentRow) []MonthSummary {
	if !core.ValidYear(year) {
		return []MonthSummary{}
	}

	totals := make(map[string]decimal.Decimal)
	names := make(map[string]string)
	for _, row := range stmts {
		key := bucketKey(row.Month)
		totals[key] = totals[key].Add(decimal.NewFromFloat(row.Total))
		if row.MonthName != "" {
			names[key] = row.MonthName
		}
	}
	installments := make(map[string]decimal.Decimal)
	for _, row := range insts {
		key := bucketKey(row.Month)
		installments[key] = installments[key].Add(decimal.NewFromFloat(row.Amount))
	}

	out := make([]MonthSummary, 0, 13)
	for _, month := range MonthsOf(year) {
		out = append(out, assemble(month, names[month], totals[month], installments[month]))
	}
	if _, ok := totals[""]; ok {
		out = append(out, assemble("", core.UnknownMonthLabel, totals[""], installments[""]))
	}
	return out
}

func bucketKey(month string) string {
	if core.ValidISOMonth(month) {
		return month
	}
	return ""
}

func assemble(month, name string, total, installment decimal.Decimal) MonthSummary {
	if name == "" {
		name = core.MonthName(month)
	}
	nonInstallment := total.Sub(installment)
	if nonInstallment.IsNegative() {
		nonInstallment = decimal.Zero
	}
	return MonthSummary{
		Month:                month,
		MonthName:            name,
		TotalAmount:          round2(total),
		InstallmentAmount:    round2(installment),
		NonInstallmentAmount: round2(nonInstallment),
	}
}

// BuildCategories assembles the category summary: 12 buckets, each with
// an entry for every known code. Rows with codes outside the category
// table are dropped.
func BuildCategories(year string, rows []CategoryRow, codes []string) []CategoryMonth {
	if !core.ValidYear(year) {
		return []CategoryMonth{}
	}

	known := make(map[string]bool, len(codes))
	for _, code := range codes {
		known[code] = true
	}

	sums := make(map[string]map[string]decimal.Decimal)
	for _, row := range rows {
		code := core.NormalizeCategory(row.Code)
		if !core.ValidISOMonth(row.Month) || !known[code] {
			continue
		}
		if sums[row.Month] == nil {
			sums[row.Month] = make(map[string]decimal.Decimal)
		}
		sums[row.Month][code] = sums[row.Month][code].Add(decimal.NewFromFloat(row.Total))
	}

	out := make([]CategoryMonth, 0, 12)
	for _, month := range MonthsOf(year) {
		totals := make(map[string]float64, len(codes))
		for _, code := range codes {
			totals[code] = round2(sums[month][code])
		}
		out = append(out, CategoryMonth{
			Month:     month,
			MonthName: core.MonthName(month),
			Totals:    totals,
		})
	}
	return out
}

// round2 rounds half-up to 2 decimal places for response assembly.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
