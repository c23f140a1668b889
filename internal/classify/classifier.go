// Package classify suggests categories for unlabeled merchant mappings
// using a TF-IDF naive-Bayes classifier trained on the labeled ones.
package classify

import (
	"errors"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"

	"faturas/internal/core"
)

// ErrNotEnoughClasses is returned when the labeled mappings span fewer
// than two category codes; the classifier needs at least two.
var ErrNotEnoughClasses = errors.New("need labeled mappings in at least two categories")

// Sample is one training example: merchant text and its category code.
type Sample struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Suggestion is a classification result for one pending mapping.
type Suggestion struct {
	Mapping  core.Mapping
	Category string
	Score    float64
}

// Classifier wraps a trained bayesian classifier over category codes.
type Classifier struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

// Samples converts labeled mappings into training samples. Mappings
// without a category are skipped.
func Samples(mappings []core.Mapping) []Sample {
	samples := make([]Sample, 0, len(mappings))
	for _, m := range mappings {
		code := core.NormalizeCategory(m.Category)
		text := trainingText(m)
		if code == "" || text == "" {
			continue
		}
		samples = append(samples, Sample{Text: text, Category: code})
	}
	return samples
}

// Train builds a classifier from training samples.
func Train(samples []Sample) (*Classifier, error) {
	seen := make(map[string]bool)
	var classes []bayesian.Class
	for _, s := range samples {
		if !seen[s.Category] {
			seen[s.Category] = true
			classes = append(classes, bayesian.Class(s.Category))
		}
	}
	if len(classes) < 2 {
		return nil, ErrNotEnoughClasses
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	cl := bayesian.NewClassifierTfIdf(classes...)
	for _, s := range samples {
		cl.Learn(Tokenize(s.Text), bayesian.Class(s.Category))
	}
	cl.ConvertTermsFreqToTfIdf()

	return &Classifier{classes: classes, cl: cl}, nil
}

// Classify returns the best-scoring category code for the given text.
func (c *Classifier) Classify(text string) (string, float64) {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return "", 0
	}
	scores, best, _ := c.cl.LogScores(terms)
	return string(c.classes[best]), scores[best]
}

// Suggest classifies every pending mapping.
func (c *Classifier) Suggest(pending []core.Mapping) []Suggestion {
	out := make([]Suggestion, 0, len(pending))
	for _, m := range pending {
		category, score := c.Classify(trainingText(m))
		if category == "" {
			continue
		}
		out = append(out, Suggestion{Mapping: m, Category: category, Score: score})
	}
	return out
}

// Tokenize lower-cases and splits merchant text into classifier terms.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:-*#")
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// trainingText joins the clean name and place key so both spellings of a
// merchant contribute terms.
func trainingText(m core.Mapping) string {
	if strings.EqualFold(strings.TrimSpace(m.CleanName), strings.TrimSpace(m.PlaceKey)) {
		return strings.TrimSpace(m.PlaceKey)
	}
	return strings.TrimSpace(strings.TrimSpace(m.CleanName) + " " + m.PlaceKey)
}
