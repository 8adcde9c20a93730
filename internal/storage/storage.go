// Package storage persists run reports for the faills viewer.
package storage

import (
	"time"

	"virtest/internal/config"
	"virtest/internal/domain"
)

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(groups []domain.ResolvedTestGroupResults, failures []domain.TestFailure, duration time.Duration) (*domain.TestResultsOutput, error)
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after toggling resolved failures).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}
