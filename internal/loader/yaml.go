package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"virtest/internal/caller"
	"virtest/internal/declaration"
	"virtest/internal/domain"
)

// errorClasses are the names usable as errorClass in test files.
var errorClasses = map[string]reflect.Type{
	"ExitError":    domain.ErrorClassOf[*exec.ExitError](),
	"PathError":    domain.ErrorClassOf[*fs.PathError](),
	"CommandError": domain.ErrorClassOf[*CommandError](),
	"Error":        reflect.TypeFor[error](),
}

// File is the top level of a YAML test file.
type File struct {
	EnvFile string      `yaml:"envFile"`
	Groups  []GroupSpec `yaml:"groups"`
}

// GroupSpec declares one test group.
type GroupSpec struct {
	Description string     `yaml:"description"`
	Exclude     bool       `yaml:"exclude"`
	ForceOnly   bool       `yaml:"forceOnly"`
	Tests       []TestSpec `yaml:"tests"`

	line, column int
}

// UnmarshalYAML records where the group was declared.
func (g *GroupSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain GroupSpec
	if err := node.Decode((*plain)(g)); err != nil {
		return err
	}
	g.line, g.column = node.Line, node.Column
	return nil
}

// TestSpec declares one command test.
type TestSpec struct {
	Description string            `yaml:"description"`
	Exclude     bool              `yaml:"exclude"`
	ForceOnly   bool              `yaml:"forceOnly"`
	Run         []string          `yaml:"run"`
	Shell       string            `yaml:"shell"`
	Dir         string            `yaml:"dir"`
	Env         map[string]string `yaml:"env"`
	Stdin       string            `yaml:"stdin"`
	Expect      *string           `yaml:"expect"`
	ExpectError *ErrorSpec        `yaml:"expectError"`

	line, column int
}

// UnmarshalYAML records where the test was declared.
func (t *TestSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain TestSpec
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.line, t.column = node.Line, node.Column
	return nil
}

// ErrorSpec is the YAML form of an error expectation.
type ErrorSpec struct {
	ErrorClass   string  `yaml:"errorClass"`
	ErrorMessage *string `yaml:"errorMessage"`
	ErrorPattern string  `yaml:"errorPattern"`
}

// located is a command test that knows its position in the YAML file.
type located struct {
	domain.Test[string]
	at caller.Caller
}

func (l located) DeclaredAt() caller.Caller { return l.at }

// YAMLLoader declares groups from YAML test files. Every test runs a command
// and compares its stdout or its error.
type YAMLLoader struct {
	runner *CommandRunner
	logger zerolog.Logger
}

// NewYAMLLoader creates a new YAMLLoader
func NewYAMLLoader(runner *CommandRunner, logger zerolog.Logger) *YAMLLoader {
	return &YAMLLoader{runner: runner, logger: logger}
}

// Load parses path and declares its groups. Commands run with ctx, so
// cancelling the run kills them.
func (l *YAMLLoader) Load(ctx context.Context, path string, declared *declaration.Context) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read test file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse test file %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	fileEnv, err := loadEnvFile(baseDir, file.EnvFile)
	if err != nil {
		return err
	}

	displayPath := relativePath(path)
	for _, group := range file.Groups {
		tests := make([]located, 0, len(group.Tests))
		for _, spec := range group.Tests {
			test, err := l.buildTest(ctx, spec, baseDir, fileEnv)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", displayPath, spec.line, err)
			}
			tests = append(tests, located{
				Test: test,
				at:   caller.Caller{FilePath: displayPath, LineNumber: spec.line, ColumnNumber: spec.column},
			})
		}

		groupAt := caller.Caller{FilePath: displayPath, LineNumber: group.line, ColumnNumber: group.column}
		_, err := declared.DeclareAt(declaration.GroupInput{
			Description: group.Description,
			Exclude:     group.Exclude,
			ForceOnly:   group.ForceOnly,
			Tests: func(runTest declaration.RunTest) {
				for _, test := range tests {
					runTest(test)
				}
			},
		}, groupAt)
		if err != nil {
			return fmt.Errorf("%s: %w", groupAt, err)
		}
	}

	l.logger.Debug().Str("file", displayPath).Int("groups", len(file.Groups)).Msg("loaded test file")
	return nil
}

func (l *YAMLLoader) buildTest(ctx context.Context, spec TestSpec, baseDir string, fileEnv map[string]string) (domain.Test[string], error) {
	if len(spec.Run) == 0 && spec.Shell == "" {
		return domain.Test[string]{}, domain.NewDefinitionError("test %q has neither run nor shell", spec.Description)
	}
	if len(spec.Run) > 0 && spec.Shell != "" {
		return domain.Test[string]{}, domain.NewDefinitionError("test %q sets both run and shell", spec.Description)
	}

	dir := baseDir
	if spec.Dir != "" {
		dir = spec.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
	}

	cmd := Command{
		Argv:  spec.Run,
		Shell: spec.Shell,
		Dir:   dir,
		Env:   mergeEnv(fileEnv, spec.Env),
		Stdin: spec.Stdin,
	}

	test := domain.Test[string]{
		Description: spec.Description,
		Exclude:     spec.Exclude,
		ForceOnly:   spec.ForceOnly,
		Test: func() (string, error) {
			return l.runner.Run(ctx, cmd)
		},
	}
	if spec.Expect != nil {
		test.Expect = domain.Want(*spec.Expect)
	}
	if spec.ExpectError != nil {
		expectation, err := spec.ExpectError.expectation()
		if err != nil {
			return domain.Test[string]{}, err
		}
		test.ExpectError = expectation
	}
	return test, nil
}

func (s *ErrorSpec) expectation() (*domain.ErrorExpectation, error) {
	expectation := &domain.ErrorExpectation{}
	if s.ErrorClass != "" {
		class, ok := errorClasses[s.ErrorClass]
		if !ok {
			return nil, domain.NewDefinitionError("unknown errorClass %q", s.ErrorClass)
		}
		expectation.ErrorClass = class
	}
	switch {
	case s.ErrorMessage != nil && s.ErrorPattern != "":
		return nil, domain.NewDefinitionError("errorMessage and errorPattern are mutually exclusive")
	case s.ErrorMessage != nil:
		expectation.ErrorMessage = domain.Message(*s.ErrorMessage)
	case s.ErrorPattern != "":
		re, err := regexp.Compile(s.ErrorPattern)
		if err != nil {
			return nil, domain.NewDefinitionError("invalid errorPattern %q: %v", s.ErrorPattern, err)
		}
		expectation.ErrorMessage = domain.MessagePattern(re)
	}
	if err := expectation.Validate(); err != nil {
		return nil, err
	}
	return expectation, nil
}

func loadEnvFile(baseDir, envFile string) (map[string]string, error) {
	if envFile == "" {
		return nil, nil
	}
	path := envFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("load envFile %s: %w", path, err)
	}
	return env, nil
}

// mergeEnv renders KEY=value pairs, test entries overriding file entries.
func mergeEnv(layers ...map[string]string) []string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

func relativePath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return path
	}
	return rel
}
