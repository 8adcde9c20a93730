package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtest/internal/caller"
	"virtest/internal/config"
	"virtest/internal/domain"
)

func newStorage(t *testing.T) (*JSONStorage, *config.Config) {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.OutputJSONDir = "reports"
	st := NewJSONStorage(cfg)
	st.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return st, cfg
}

func sampleGroups() []domain.ResolvedTestGroupResults {
	at := caller.Caller{FilePath: "a.vir.yaml", LineNumber: 2, ColumnNumber: 5}
	noop := domain.Func(func() error { return nil })
	return []domain.ResolvedTestGroupResults{
		{
			AllResults: []domain.IndividualTestResult{
				domain.NoCheckPassResult(noop, at),
				domain.ErrorResult(noop, at, errors.New("boom")),
				domain.IgnoredResult(noop),
			},
		},
		{
			FilteredTestGroupOutput: domain.FilteredTestGroupOutput{
				IgnoredReason: domain.IgnoredNonForced,
				Tests:         make([]domain.FilteredWrappedTest, 2),
			},
			AllResults: []domain.IndividualTestResult{},
		},
	}
}

func TestMeta(t *testing.T) {
	meta := Meta(sampleGroups(), 1500*time.Millisecond)

	assert.Equal(t, 2, meta.TotalGroups)
	assert.Equal(t, 5, meta.TotalTests)
	assert.Equal(t, 1, meta.PassedTests)
	assert.Equal(t, 1, meta.FailedTests)
	assert.Equal(t, 3, meta.IgnoredTests)
	assert.Equal(t, "1.5s", meta.Duration)
	assert.InDelta(t, 1.5, meta.DurationSeconds, 0.0001)
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	st, cfg := newStorage(t)
	failures := []domain.TestFailure{{TestName: "boom", ResultState: domain.StateError, Line: 2}}

	saved, err := st.Save(sampleGroups(), failures, time.Second)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z", saved.Meta.Timestamp)

	assert.FileExists(t, filepath.Join(cfg.ProjectPath, "reports", cfg.OutputJSONFile))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	loaded.Details[0].Resolved = true
	require.NoError(t, st.SaveOutput(loaded))
	reloaded, err := st.Load()
	require.NoError(t, err)
	assert.True(t, reloaded.Details[0].Resolved)
}

func TestJSONStorage_SaveWithoutFailures(t *testing.T) {
	st, cfg := newStorage(t)

	_, err := st.Save(nil, nil, 0)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.GetOutputPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"details": []`)
}

func TestJSONStorage_LoadErrors(t *testing.T) {
	st, cfg := newStorage(t)

	_, err := st.Load()
	assert.ErrorContains(t, err, "read results file")

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.GetOutputPath()), 0755))
	require.NoError(t, os.WriteFile(cfg.GetOutputPath(), []byte("{not json"), 0644))
	_, err = st.Load()
	assert.ErrorContains(t, err, "parse results")
}
