package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gtr/internal/domain"
)

// Save writes a summary of the runs and their failures to the configured JSON output file.
func (s *JSONStorage) Save(runs []domain.RunRecord, duration time.Duration, processors int) error {
	meta := domain.TestResultsMeta{
		Executables:     len(runs),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Processors:      processors,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	failures := []domain.TestFailure{}
	for _, run := range runs {
		passed, failed, skipped := run.Results.Counts()
		meta.PassedTests += passed
		meta.FailedTests += failed
		meta.SkippedTests += skipped
		failures = append(failures, run.Failures()...)
	}
	meta.TotalTests = meta.PassedTests + meta.FailedTests + meta.SkippedTests

	return s.SaveOutput(&domain.TestResultsOutput{Meta: meta, Details: failures})
}

// Load reads the last results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	var output domain.TestResultsOutput
	if err := readJSON(s.cfg.GetOutputPath(), &output); err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	if err := writeJSON(s.cfg.GetOutputPath(), output); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
