package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		testPath string
		flagPath string
		want     string
	}{
		{"configured path", "/project", "tests", "", "/project/tests"},
		{"flag overrides configured path", "/project", "tests", "e2e", "/project/e2e"},
		{"absolute flag is kept", "/project", "tests", "/abs/suite", "/abs/suite"},
		{"defaults", ".", ".", "", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ProjectPath: tt.project, TestPath: tt.testPath, Flags: Flags{TestPath: tt.flagPath}}
			assert.Equal(t, tt.want, cfg.GetTestPath())
		})
	}
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"
	assert.Equal(t, "/project/storage/test-results.json", cfg.GetOutputPath())

	cfg.OutputJSONDir = "/tmp/reports"
	assert.Equal(t, "/tmp/reports/test-results.json", cfg.GetOutputPath())
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultPathsToIgnore, cfg.PathsToIgnore)

	cfg.Patterns[0] = "changed"
	assert.NotEqual(t, "changed", DefaultPatterns[0], "patterns are copied")
}

func TestConfig_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "virtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
test_path: tests
patterns: ["*.check.yaml"]
log_level: debug
debug: true
`), 0644))

	cfg := New()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "tests", cfg.TestPath)
	assert.Equal(t, []string{"*.check.yaml"}, cfg.Patterns)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultOutputJSONFile, cfg.OutputJSONFile)
}

func TestConfig_LoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "virtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patterns: {not: [a list"), 0644))

	err := New().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvOutputDir, "reports")

	cfg := New()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "reports", cfg.OutputJSONDir)
}

func TestConfig_ApplyEnv_InvalidDebug(t *testing.T) {
	t.Setenv(EnvDebug, "sometimes")
	require.Error(t, New().ApplyEnv())
}

func TestConfig_LoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VIRTEST_TEST_ONLY_VALUE=from-file\n"), 0644))
	t.Setenv("VIRTEST_TEST_ONLY_VALUE", "")
	require.NoError(t, os.Unsetenv("VIRTEST_TEST_ONLY_VALUE"))

	cfg := New()
	cfg.ProjectPath = dir
	require.NoError(t, cfg.LoadEnvFile())
	assert.Equal(t, "from-file", os.Getenv("VIRTEST_TEST_ONLY_VALUE"))

	cfg.EnvFile = "missing.env"
	assert.NoError(t, cfg.LoadEnvFile())
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{LogLevel: "debug", Debug: true, NameFilter: "*math*"})

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "*math*", cfg.Flags.NameFilter)
	assert.Equal(t, "debug", cfg.Logging().Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}
