package matcher

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtest/internal/domain"
)

type point struct {
	X, Y int
	tag  string
}

func TestValuesEqual(t *testing.T) {
	instant := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	paris := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name     string
		expected any
		actual   any
		equal    bool
	}{
		{"same int", 5, 5, true},
		{"different int", 5, 3, false},
		{"different types", 5, int64(5), false},
		{"strings", "a", "a", true},
		{"nil and nil", nil, nil, true},
		{"distinct slices same elements", []int{1, 2, 3}, []int{1, 2, 3}, true},
		{"reversed slice", []int{1, 2, 3}, []int{3, 2, 1}, false},
		{"length differs", []int{1, 2}, []int{1, 2, 3}, false},
		{"nil and empty slice", []int(nil), []int{}, true},
		{"nil and empty map", map[string]int(nil), map[string]int{}, true},
		{"nil and one-element slice", []int(nil), []int{0}, false},
		{"maps ignore order", map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}, true},
		{"map value differs", map[string]int{"a": 1}, map[string]int{"a": 2}, false},
		{"sets", map[string]struct{}{"x": {}, "y": {}}, map[string]struct{}{"y": {}, "x": {}}, true},
		{"set membership differs", map[string]struct{}{"x": {}}, map[string]struct{}{"y": {}}, false},
		{"structs with unexported fields", point{1, 2, "a"}, point{1, 2, "a"}, true},
		{"unexported field differs", point{1, 2, "a"}, point{1, 2, "b"}, false},
		{"nested", map[string][]point{"p": {{X: 1}}}, map[string][]point{"p": {{X: 1}}}, true},
		{"same instant other zone", instant, instant.In(paris), true},
		{"different instant", instant, instant.Add(time.Second), false},
		{"same regexp", regexp.MustCompile(`a+b`), regexp.MustCompile(`a+b`), true},
		{"regexp flags differ", regexp.MustCompile(`(?i)a+b`), regexp.MustCompile(`a+b`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equal, err := ValuesEqual(tt.expected, tt.actual)
			require.NoError(t, err)
			assert.Equal(t, tt.equal, equal)
		})
	}
}

func TestValuesEqual_Reflexive(t *testing.T) {
	values := []any{
		0, "", "text", 3.5, true,
		[]string{"a", "b"},
		map[int]bool{1: true},
		point{X: 1, tag: "t"},
		time.Now(),
		regexp.MustCompile(`x`),
		[]any{1, "two", []int{3}},
	}
	for _, v := range values {
		equal, err := ValuesEqual(v, v)
		require.NoError(t, err)
		assert.True(t, equal, "%#v", v)
	}
}

func TestValuesEqual_InternalError(t *testing.T) {
	original := compare
	t.Cleanup(func() { compare = original })
	compare = func(any, any) bool { panic("comparison exploded") }

	equal, err := ValuesEqual(1, 1)
	assert.False(t, equal)
	assert.True(t, domain.IsInternalError(err))
	assert.Contains(t, err.Error(), "comparison exploded")
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff([]int{1}, []int{1}))
	assert.NotEmpty(t, Diff([]int{1}, []int{2}))
}
