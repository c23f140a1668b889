package csvimport

import (
	"reflect"
	"strings"
	"testing"

	"faturas/internal/core"
)

func TestParseStatementExample(t *testing.T) {
	in := "D;P;O;V;I\n05/03/2024;Market;john doe;123,45;2 de 3\n"
	txns := ParseStatement(strings.NewReader(in), true)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	want := core.Transaction{
		Date:         "2024-03-05",
		Place:        "Market",
		Owner:        "John Doe",
		Amount:       123.45,
		Installments: &core.Installment{Current: 2, Total: 3},
	}
	if !reflect.DeepEqual(txns[0], want) {
		t.Fatalf("got %+v, want %+v", txns[0], want)
	}
}

func TestReadRowsQuotingAndLineEndings(t *testing.T) {
	in := "\"Padaria; do Zé\";10,00\r\nMercado;20,00\n"
	rows := ReadRows(strings.NewReader(in))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Padaria; do Zé" {
		t.Fatalf("quoted field mangled: %q", rows[0][0])
	}
	if len(rows[1]) != 2 || rows[1][0] != "Mercado" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"05/03/2024", "2024-03-05"},
		{"5/3/2024", "2024-03-05"},
		{"05-03-2024", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"29/02/2024", "2024-02-29"}, // leap year
		{"31/02/2024", ""},           // invalid calendar date
		{"29/02/2023", ""},
		{"32/01/2024", ""},
		{"01/13/2024", ""},
		{"05/03/24", ""},
		{"not a date", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseDate(tc.in); got != tc.out {
			t.Fatalf("ParseDate(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"123,45", 123.45},
		{"123.45", 123.45},
		{"R$ 99,90", 99.9},
		{"-15,00", -15},
		{"1500", 1500},
		{"abc", 0},
		{"", 0},
		{"1.234,56", 0}, // ambiguous thousands separator stays defaulted
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestParseInstallments(t *testing.T) {
	cases := []struct {
		in  string
		out *core.Installment
	}{
		{"2 de 3", &core.Installment{Current: 2, Total: 3}},
		{"2/3", &core.Installment{Current: 2, Total: 3}},
		{"10 DE 12", &core.Installment{Current: 10, Total: 12}},
		{" 1 de 1 ", &core.Installment{Current: 1, Total: 1}},
		{"de 3", nil},
		{"2 of 3", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ParseInstallments(tc.in)
		if !reflect.DeepEqual(got, tc.out) {
			t.Fatalf("ParseInstallments(%q) = %+v, want %+v", tc.in, got, tc.out)
		}
	}
}

func TestParseRowShortRow(t *testing.T) {
	tx := ParseRow([]string{"05/03/2024", "Market"})
	if tx.Date != "2024-03-05" || tx.Place != "Market" || tx.Amount != 0 || tx.Installments != nil {
		t.Fatalf("unexpected transaction from short row: %+v", tx)
	}
}
