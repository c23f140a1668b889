package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	// StatusPending marks a mapping extracted from statements but not yet
	// categorized by the user.
	StatusPending MappingStatus = "pending"
	// StatusLabeled marks a mapping that has been assigned a category.
	StatusLabeled MappingStatus = "labeled"
)

// UnknownMonthLabel is the bucket label for statements without an ISO month.
const UnknownMonthLabel = "Unknown"

type (
	MappingStatus string

	// Installment tracks a purchase split across billing cycles.
	Installment struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	// Transaction is one charge/credit line item within a Statement.
	// Amounts are sign-significant: negative values are credits/refunds.
	Transaction struct {
		Date         string       `json:"date"`
		Place        string       `json:"place"`
		Category     string       `json:"category"`
		Owner        string       `json:"owner"`
		Amount       float64      `json:"amount"`
		Installments *Installment `json:"installments,omitempty"`
	}

	// Statement is one imported CSV file's worth of transactions.
	Statement struct {
		ID                int64         `json:"id"`
		Month             string        `json:"month"` // "YYYY-MM" or ""
		FileName          string        `json:"fileName"`
		MonthName         string        `json:"monthName"`
		TotalAmount       float64       `json:"totalAmount"`
		TotalTransactions int           `json:"totalTransactions"`
		Transactions      []Transaction `json:"transactions"`
		CreatedAt         time.Time     `json:"createdAt"`
		UpdatedAt         time.Time     `json:"updatedAt"`
	}

	// Category is a user-defined label with a derived normalized code used
	// as the join key between transactions, mappings and categories.
	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Code      string    `json:"code"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Mapping is a user-curated association from a normalized merchant
	// string to a clean display name and a category code.
	Mapping struct {
		ID        int64         `json:"id"`
		PlaceKey  string        `json:"placeKey"`
		CleanName string        `json:"cleanName"`
		Category  string        `json:"category"`
		Status    MappingStatus `json:"status"`
		CreatedAt time.Time     `json:"createdAt"`
		UpdatedAt time.Time     `json:"updatedAt"`
	}
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateCode  = errors.New("duplicate category code")
	ErrEmptyFileName  = errors.New("empty file name")
	ErrNoTransactions = errors.New("statement has no transactions")
	ErrEmptyName      = errors.New("empty category name")
	ErrEmptyCode      = errors.New("empty category code")
	ErrEmptyPlace     = errors.New("empty place")
)

var (
	isoMonthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	yearRe     = regexp.MustCompile(`^\d{4}$`)
)

// ValidISOMonth reports whether s is a well-formed "YYYY-MM" key.
func ValidISOMonth(s string) bool {
	return isoMonthRe.MatchString(s)
}

// ValidYear reports whether s is a 4-digit year.
func ValidYear(s string) bool {
	return yearRe.MatchString(s)
}

// Validate checks the invariants required before a statement is persisted.
func (s Statement) Validate() error {
	if strings.TrimSpace(s.FileName) == "" {
		return ErrEmptyFileName
	}
	if len(s.Transactions) == 0 {
		return ErrNoTransactions
	}
	return nil
}

// Validate checks a category before create/update.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Code == "" {
		return ErrEmptyCode
	}
	return nil
}

// Labeled reports whether the mapping has been categorized.
func (m Mapping) Labeled() bool {
	return m.Status == StatusLabeled
}

// CountsForInstallmentSum reports whether the transaction participates in
// the monthly installment total: more than one installment overall and a
// positive current installment number.
func (t Transaction) CountsForInstallmentSum() bool {
	return t.Installments != nil && t.Installments.Total > 1 && t.Installments.Current > 0
}
