package core

import "testing"

func TestNormalizeOwner(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"john doe", "John Doe"},
		{"  maria   da  silva ", "Maria Da Silva"},
		{"JOHN", "John"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeOwner(tc.in); got != tc.out {
			t.Fatalf("NormalizeOwner(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestPlaceKey(t *testing.T) {
	if got := PlaceKey("  Padaria do Zé "); got != "PADARIA DO ZÉ" {
		t.Fatalf("PlaceKey = %q", got)
	}
}

func TestMonthName(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"2024-03", "March"},
		{"2024-12", "December"},
		{"", UnknownMonthLabel},
		{"garbage", UnknownMonthLabel},
	}
	for _, tc := range cases {
		if got := MonthName(tc.in); got != tc.out {
			t.Fatalf("MonthName(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestValidISOMonth(t *testing.T) {
	valid := []string{"2024-01", "1999-12"}
	invalid := []string{"", "2024-13", "2024-00", "2024-1", "24-01", "2024/01", "unknown"}
	for _, s := range valid {
		if !ValidISOMonth(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if ValidISOMonth(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestYearOf(t *testing.T) {
	if got := YearOf("2024-05"); got != "2024" {
		t.Fatalf("YearOf = %q", got)
	}
	if got := YearOf(""); got != "" {
		t.Fatalf("YearOf empty = %q", got)
	}
}
