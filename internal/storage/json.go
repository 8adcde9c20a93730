package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"virtest/internal/domain"
)

// Meta summarizes a run. Ignored tests count neither as passed nor failed.
func Meta(groups []domain.ResolvedTestGroupResults, duration time.Duration) domain.TestResultsMeta {
	meta := domain.TestResultsMeta{
		TotalGroups:     len(groups),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
	}
	for _, group := range groups {
		if group.IgnoredReason.Ignored() {
			meta.TotalTests += len(group.Tests)
			meta.IgnoredTests += len(group.Tests)
			continue
		}
		for _, result := range group.AllResults {
			meta.TotalTests++
			switch {
			case result.ResultState == domain.StateIgnored:
				meta.IgnoredTests++
			case result.Success:
				meta.PassedTests++
			default:
				meta.FailedTests++
			}
		}
	}
	return meta
}

// Save writes a new report for the run and returns it.
func (s *JSONStorage) Save(groups []domain.ResolvedTestGroupResults, failures []domain.TestFailure, duration time.Duration) (*domain.TestResultsOutput, error) {
	if failures == nil {
		failures = []domain.TestFailure{}
	}
	meta := Meta(groups, duration)
	meta.RunID = uuid.NewString()
	meta.Timestamp = s.now().Format(time.RFC3339)

	output := &domain.TestResultsOutput{
		Meta:    meta,
		Details: failures,
	}
	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last test results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
