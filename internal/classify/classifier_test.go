package classify

import (
	"errors"
	"testing"

	"faturas/internal/core"
)

func labeled(place, clean, category string) core.Mapping {
	return core.Mapping{
		PlaceKey:  core.PlaceKey(place),
		CleanName: clean,
		Category:  category,
		Status:    core.StatusLabeled,
	}
}

func trainingSet() []Sample {
	return Samples([]core.Mapping{
		labeled("supermercado extra 123", "Extra", "GROCERIES"),
		labeled("mercado dia sp", "Dia", "GROCERIES"),
		labeled("padaria central", "Padaria Central", "GROCERIES"),
		labeled("uber trip help.uber.com", "Uber", "TRANSPORT"),
		labeled("uber eats", "Uber Eats", "TRANSPORT"),
		labeled("99 tecnologia", "99", "TRANSPORT"),
	})
}

func TestTrainNeedsTwoClasses(t *testing.T) {
	samples := Samples([]core.Mapping{
		labeled("market a", "A", "GROCERIES"),
		labeled("market b", "B", "GROCERIES"),
	})
	if _, err := Train(samples); !errors.Is(err, ErrNotEnoughClasses) {
		t.Fatalf("err = %v, want ErrNotEnoughClasses", err)
	}
}

func TestClassifyKnownMerchants(t *testing.T) {
	c, err := Train(trainingSet())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if got, _ := c.Classify("supermercado extra 456"); got != "GROCERIES" {
		t.Errorf("Classify(supermercado) = %q, want GROCERIES", got)
	}
	if got, _ := c.Classify("uber trip"); got != "TRANSPORT" {
		t.Errorf("Classify(uber) = %q, want TRANSPORT", got)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	c, err := Train(trainingSet())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got, _ := c.Classify("   "); got != "" {
		t.Errorf("Classify(blank) = %q, want empty", got)
	}
}

func TestSuggestSkipsBlankMappings(t *testing.T) {
	c, err := Train(trainingSet())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	pending := []core.Mapping{
		{PlaceKey: "MERCADO DIA RJ", Status: core.StatusPending},
		{PlaceKey: "", Status: core.StatusPending},
	}
	suggestions := c.Suggest(pending)
	if len(suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(suggestions))
	}
	if suggestions[0].Category != "GROCERIES" {
		t.Errorf("suggested = %q, want GROCERIES", suggestions[0].Category)
	}
}

func TestSamplesSkipUnlabeled(t *testing.T) {
	samples := Samples([]core.Mapping{
		labeled("market", "Market", "GROCERIES"),
		{PlaceKey: "PENDING PLACE", Status: core.StatusPending},
	})
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(samples))
	}
	if samples[0].Category != "GROCERIES" {
		t.Errorf("category = %q", samples[0].Category)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("  PAG*Supermercado Extra, 123 ")
	want := []string{"pag*supermercado", "extra", "123"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d = %q, want %q", i, got[i], want[i])
		}
	}
}
