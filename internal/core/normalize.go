package core

import (
	"strings"
	"time"
	"unicode"
)

// PlaceKey derives the lookup key used to join transactions to mappings.
// The join is case- and whitespace-insensitive on both sides.
func PlaceKey(place string) string {
	return strings.ToUpper(strings.TrimSpace(place))
}

// NormalizeOwner collapses whitespace and capitalizes each word.
func NormalizeOwner(owner string) string {
	words := strings.Fields(owner)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// MonthName resolves the human month name for an ISO month key.
// Invalid or empty keys resolve to the unknown-month label.
func MonthName(isoMonth string) string {
	t, err := time.Parse("2006-01", isoMonth)
	if err != nil {
		return UnknownMonthLabel
	}
	return t.Month().String()
}

// YearOf returns the 4-digit year prefix of a valid ISO month, or "".
func YearOf(isoMonth string) string {
	if !ValidISOMonth(isoMonth) {
		return ""
	}
	return isoMonth[:4]
}

// NormalizeCategory prepares a free-text category code for comparison.
func NormalizeCategory(category string) string {
	return strings.ToUpper(strings.TrimSpace(category))
}
