package core

import (
	"encoding/json"
	"math"
	"strconv"
)

// SanitizeTransaction coerces an arbitrary decoded value into a canonical
// Transaction, or nil when the value is not an object. String fields of
// the wrong type default to "", amount defaults to 0 unless finite, and
// installments are kept only when both current and total parse as
// integers. The same function guards statement creation and retrieval, so
// malformed stored data never leaks out. Applying it twice is a no-op.
func SanitizeTransaction(v any) *Transaction {
	switch t := v.(type) {
	case Transaction:
		out := SanitizeStored(t)
		return &out
	case *Transaction:
		if t == nil {
			return nil
		}
		out := SanitizeStored(*t)
		return &out
	case map[string]any:
		out := Transaction{
			Date:         stringField(t["date"]),
			Place:        stringField(t["place"]),
			Category:     stringField(t["category"]),
			Owner:        stringField(t["owner"]),
			Amount:       amountField(t["amount"]),
			Installments: installmentField(t["installments"]),
		}
		return &out
	default:
		return nil
	}
}

// SanitizeStored applies the same clamping to an already-typed
// transaction read back from storage.
func SanitizeStored(t Transaction) Transaction {
	if !isFinite(t.Amount) {
		t.Amount = 0
	}
	if t.Installments != nil && t.Installments.Current == 0 && t.Installments.Total == 0 {
		t.Installments = nil
	}
	return t
}

func stringField(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func amountField(v any) float64 {
	switch n := v.(type) {
	case float64:
		if isFinite(n) {
			return n
		}
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil && isFinite(f) {
			return f
		}
	}
	return 0
}

func installmentField(v any) *Installment {
	switch inst := v.(type) {
	case *Installment:
		if inst == nil {
			return nil
		}
		cp := *inst
		return &cp
	case Installment:
		cp := inst
		return &cp
	case map[string]any:
		current, okCur := intField(inst["current"])
		total, okTot := intField(inst["total"])
		if !okCur || !okTot {
			return nil
		}
		if current == 0 && total == 0 {
			return nil
		}
		return &Installment{Current: current, Total: total}
	default:
		return nil
	}
}

func intField(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || !isFinite(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
