package core

import (
	"math"
	"reflect"
	"testing"
)

func TestSanitizeTransactionFromObject(t *testing.T) {
	in := map[string]any{
		"date":         "2024-03-05",
		"place":        "Market",
		"owner":        "John Doe",
		"amount":       123.45,
		"category":     "FOOD",
		"installments": map[string]any{"current": float64(2), "total": float64(3)},
	}
	got := SanitizeTransaction(in)
	if got == nil {
		t.Fatal("expected transaction, got nil")
	}
	want := Transaction{
		Date:         "2024-03-05",
		Place:        "Market",
		Category:     "FOOD",
		Owner:        "John Doe",
		Amount:       123.45,
		Installments: &Installment{Current: 2, Total: 3},
	}
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestSanitizeTransactionDefaults(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]any
		want Transaction
	}{
		{
			name: "wrong types default",
			in:   map[string]any{"date": 42, "place": nil, "owner": true, "amount": "12"},
			want: Transaction{},
		},
		{
			name: "non-finite amount",
			in:   map[string]any{"amount": math.Inf(1)},
			want: Transaction{},
		},
		{
			name: "installments with non-integer current",
			in:   map[string]any{"installments": map[string]any{"current": 1.5, "total": float64(3)}},
			want: Transaction{},
		},
		{
			name: "installments missing total",
			in:   map[string]any{"installments": map[string]any{"current": float64(1)}},
			want: Transaction{},
		},
		{
			name: "installments from strings",
			in:   map[string]any{"installments": map[string]any{"current": "2", "total": "10"}},
			want: Transaction{Installments: &Installment{Current: 2, Total: 10}},
		},
	}
	for _, tc := range cases {
		got := SanitizeTransaction(tc.in)
		if got == nil {
			t.Fatalf("%s: got nil", tc.name)
		}
		if !reflect.DeepEqual(*got, tc.want) {
			t.Fatalf("%s: got %+v, want %+v", tc.name, *got, tc.want)
		}
	}
}

func TestSanitizeTransactionNonObject(t *testing.T) {
	for _, in := range []any{nil, "text", 42.0, []any{"a"}, true} {
		if got := SanitizeTransaction(in); got != nil {
			t.Fatalf("SanitizeTransaction(%v) = %+v, want nil", in, got)
		}
	}
}

func TestSanitizeTransactionIdempotent(t *testing.T) {
	in := map[string]any{
		"date":         "2024-01-10",
		"place":        "  Cafe ",
		"owner":        "Jane",
		"amount":       -55.5,
		"installments": map[string]any{"current": float64(1), "total": float64(4)},
	}
	once := SanitizeTransaction(in)
	twice := SanitizeTransaction(once)
	if twice == nil || !reflect.DeepEqual(*once, *twice) {
		t.Fatalf("not idempotent: once=%+v twice=%+v", once, twice)
	}
}

func TestSanitizeStoredClampsBadValues(t *testing.T) {
	got := SanitizeStored(Transaction{Amount: math.NaN(), Installments: &Installment{}})
	if got.Amount != 0 {
		t.Fatalf("amount = %v, want 0", got.Amount)
	}
	if got.Installments != nil {
		t.Fatalf("expected zero-valued installments dropped")
	}
}
