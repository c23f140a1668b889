package core

import "testing"

func TestCategoryCode(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"Alimentação & Bebidas", "ALIMENTACAOBEBIDAS"},
		{"Saúde", "SAUDE"},
		{"viagens", "VIAGENS"},
		{"Pets 2", "PETS2"},
		{"  Mercado  ", "MERCADO"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CategoryCode(tc.in); got != tc.out {
			t.Fatalf("CategoryCode(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestCategoryCodeStable(t *testing.T) {
	// Derivation must be a fixpoint: deriving from a derived code changes nothing.
	code := CategoryCode("Alimentação & Bebidas")
	if again := CategoryCode(code); again != code {
		t.Fatalf("CategoryCode not stable: %q -> %q", code, again)
	}
}
