package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtest/internal/declaration"
	"virtest/internal/domain"
	"virtest/internal/matcher"
)

const sampleFile = `envFile: test.env
groups:
  - description: commands
    forceOnly: true
    tests:
      - description: echo prints
        run: [echo, hi]
        expect: "hi\n"
      - description: reads env
        shell: 'printf "%s-%s" "$FROM_FILE" "$FROM_TEST"'
        env:
          FROM_TEST: test
        expect: "file-test"
      - description: failing command
        shell: "exit 3"
        expectError:
          errorClass: ExitError
          errorMessage: "exit status 3"
  - description: second
    exclude: true
    tests:
      - shell: "true"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newYAMLLoader() *YAMLLoader {
	return NewYAMLLoader(NewCommandRunner(), zerolog.Nop())
}

func TestYAMLLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.env", "FROM_FILE=file\n")
	path := writeFile(t, dir, "sample.vir.yaml", sampleFile)

	declared := declaration.NewContext(zerolog.Nop())
	require.NoError(t, newYAMLLoader().Load(context.Background(), path, declared))

	groups, err := declared.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	first := groups[0]
	assert.Equal(t, "commands", first.Description)
	assert.True(t, first.ForceOnly)
	assert.Equal(t, 3, first.Caller.LineNumber)
	assert.Equal(t, 5, first.Caller.ColumnNumber)
	assert.Equal(t, filepath.Base(path), filepath.Base(first.Caller.FilePath))
	require.Len(t, first.Tests, 3)
	assert.Equal(t, 6, first.Tests[0].Caller.LineNumber)
	assert.Equal(t, 9, first.Tests[0].Caller.ColumnNumber)

	assert.True(t, groups[1].Exclude)

	t.Run("bodies run the commands", func(t *testing.T) {
		out, err := first.Tests[0].Input.Run()
		require.NoError(t, err)
		expected, ok := first.Tests[0].Input.Expected()
		require.True(t, ok)
		equal, err := matcher.ValuesEqual(expected, out)
		require.NoError(t, err)
		assert.True(t, equal)

		out, err = first.Tests[1].Input.Run()
		require.NoError(t, err)
		assert.Equal(t, "file-test", out)

		_, thrown := first.Tests[2].Input.Run()
		matched, err := matcher.ErrorsMatch(thrown, first.Tests[2].Input.ErrorExpected())
		require.NoError(t, err)
		assert.True(t, matched)
	})
}

func TestYAMLLoader_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no command",
			content: "groups:\n  - description: g\n    tests:\n      - description: nothing\n",
		},
		{
			name:    "run and shell",
			content: "groups:\n  - description: g\n    tests:\n      - run: [echo]\n        shell: echo\n",
		},
		{
			name:    "unknown error class",
			content: "groups:\n  - description: g\n    tests:\n      - shell: 'false'\n        expectError: {errorClass: TypeError}\n",
		},
		{
			name:    "empty error expectation",
			content: "groups:\n  - description: g\n    tests:\n      - shell: 'false'\n        expectError: {}\n",
		},
		{
			name:    "both expectations",
			content: "groups:\n  - description: g\n    tests:\n      - shell: 'false'\n        expect: x\n        expectError: {errorPattern: x}\n",
		},
		{
			name:    "missing group description",
			content: "groups:\n  - tests:\n      - shell: 'true'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.vir.yaml", tt.content)
			err := newYAMLLoader().Load(context.Background(), path, declaration.NewContext(zerolog.Nop()))
			require.Error(t, err)
			assert.True(t, domain.IsDefinitionError(err), "got %v", err)
		})
	}
}

func TestYAMLLoader_ImportFailures(t *testing.T) {
	dir := t.TempDir()

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.vir.yaml", "groups: [unclosed")
		err := newYAMLLoader().Load(context.Background(), path, declaration.NewContext(zerolog.Nop()))
		require.Error(t, err)
		assert.False(t, domain.IsDefinitionError(err))
	})

	t.Run("missing env file", func(t *testing.T) {
		path := writeFile(t, dir, "env.vir.yaml", "envFile: nope.env\ngroups: []\n")
		err := newYAMLLoader().Load(context.Background(), path, declaration.NewContext(zerolog.Nop()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.env")
	})
}

func TestYAMLLoader_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.vir.yaml", "groups: []\n")
	declared := declaration.NewContext(zerolog.Nop())
	require.NoError(t, newYAMLLoader().Load(context.Background(), path, declared))
	assert.Equal(t, 0, declared.Len())
}

func TestMergeEnv(t *testing.T) {
	env := mergeEnv(map[string]string{"A": "1", "B": "file"}, map[string]string{"B": "test"})
	assert.Equal(t, []string{"A=1", "B=test"}, env)
}
