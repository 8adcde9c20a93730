package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"virtest/internal/logging"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	TestPath    string `yaml:"test_path"`

	// Patterns select test files inside scanned directories
	Patterns []string `yaml:"patterns"`

	// Output settings
	OutputJSONFile string `yaml:"output_json_file"`
	OutputJSONDir  string `yaml:"output_json_dir"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"paths_to_ignore"`

	// Logging and formatting
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`

	// EnvFile is loaded before the environment overrides are read
	EnvFile string `yaml:"env_file"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	TestPath   string
	NameFilter string
	ConfigFile string
	LogLevel   string
	Debug      bool
	FailFast   bool
	OpenFaills bool
	TestCases  bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		LogLevel:       DefaultLogLevel,
		EnvFile:        DefaultEnvFile,
	}
	cfg.Patterns = append([]string(nil), DefaultPatterns...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// Load builds the configuration in order: defaults, project file, env file,
// environment variables, then flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()

	path := flags.ConfigFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.ProjectPath, DefaultConfigFile)
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.LoadEnvFile(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)
	return cfg, nil
}

// LoadFile merges a YAML project file into the config.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnvFile loads EnvFile into the process environment without
// overriding variables that are already set. A missing file is ignored.
func (c *Config) LoadEnvFile() error {
	if c.EnvFile == "" {
		return nil
	}
	path := c.EnvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.ProjectPath, path)
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies the VIRTEST_* overrides.
func (c *Config) ApplyEnv() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if raw := os.Getenv(EnvDebug); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvDebug, raw, err)
		}
		c.Debug = debug
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputJSONDir = dir
	}
	return nil
}

// ApplyFlags copies the flags and lets set flags override the config.
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Debug {
		c.Debug = true
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to ProjectPath if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := c.OutputJSONDir
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.ProjectPath, p)
	}
	p = filepath.Join(p, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = strings.ToLower(c.LogLevel)
	return cfg
}
