package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultConfigFile is the project file read from the project path
	DefaultConfigFile = "virtest.yaml"
	// DefaultEnvFile is loaded into the process environment when present
	DefaultEnvFile = ".env"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultLogLevel only surfaces warnings
	DefaultLogLevel = "warn"
)

// Environment variables that override the project file.
const (
	EnvLogLevel  = "VIRTEST_LOG_LEVEL"
	EnvDebug     = "VIRTEST_DEBUG"
	EnvOutputDir = "VIRTEST_OUTPUT_DIR"
)

// DefaultPatterns match the test files picked up when scanning directories
var DefaultPatterns = []string{
	"*.vir.yaml",
	"*.vir.yml",
}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	".git",
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
