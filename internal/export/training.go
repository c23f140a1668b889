// Package export emits classifier training samples to a JSON file and,
// when configured, to a Google Sheet used for labeling review.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"faturas/internal/classify"
)

// WriteTrainingFile writes training samples as a JSON array to path,
// creating parent directories as needed.
func WriteTrainingFile(path string, samples []classify.Sample) error {
	if samples == nil {
		samples = []classify.Sample{}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal training samples: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create training output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write training samples: %w", err)
	}
	return nil
}

// ReadTrainingFile loads training samples previously written by
// WriteTrainingFile.
func ReadTrainingFile(path string) ([]classify.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read training samples: %w", err)
	}
	var samples []classify.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse training samples: %w", err)
	}
	return samples, nil
}
