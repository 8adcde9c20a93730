package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtest/internal/domain"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

type panickyError struct{}

func (*panickyError) Error() string { panic("no message for you") }

func TestErrorsMatch(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "/nope", Err: fs.ErrNotExist}

	tests := []struct {
		name        string
		thrown      error
		expectation *domain.ErrorExpectation
		expected    bool
	}{
		{
			name:        "class matches",
			thrown:      pathErr,
			expectation: &domain.ErrorExpectation{ErrorClass: domain.ErrorClassOf[*fs.PathError]()},
			expected:    true,
		},
		{
			name:        "class matches through wrapping",
			thrown:      fmt.Errorf("reading config: %w", pathErr),
			expectation: &domain.ErrorExpectation{ErrorClass: domain.ErrorClassOf[*fs.PathError]()},
			expected:    true,
		},
		{
			name:        "class mismatch",
			thrown:      errors.New("plain"),
			expectation: &domain.ErrorExpectation{ErrorClass: domain.ErrorClassOf[*customError]()},
			expected:    false,
		},
		{
			name:        "interface class",
			thrown:      &customError{msg: "x"},
			expectation: &domain.ErrorExpectation{ErrorClass: domain.ErrorClassOf[error]()},
			expected:    true,
		},
		{
			name:        "exact message",
			thrown:      errors.New("exact text"),
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.Message("exact text")},
			expected:    true,
		},
		{
			name:        "exact message is not a substring match",
			thrown:      errors.New("prefix exact text"),
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.Message("exact text")},
			expected:    false,
		},
		{
			name:        "pattern uses search",
			thrown:      errors.New("prefix abc123 suffix"),
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.MessagePattern(regexp.MustCompile(`abc\d+`))},
			expected:    true,
		},
		{
			name:        "pattern miss",
			thrown:      errors.New("prefix abc suffix"),
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.MessageMatching(`abc\d+`)},
			expected:    false,
		},
		{
			name:   "class and message both hold",
			thrown: &customError{msg: "bad input"},
			expectation: &domain.ErrorExpectation{
				ErrorClass:   domain.ErrorClassOf[*customError](),
				ErrorMessage: domain.Message("bad input"),
			},
			expected: true,
		},
		{
			name:   "class holds but message does not",
			thrown: &customError{msg: "bad input"},
			expectation: &domain.ErrorExpectation{
				ErrorClass:   domain.ErrorClassOf[*customError](),
				ErrorMessage: domain.Message("other"),
			},
			expected: false,
		},
		{
			name:        "nothing thrown",
			thrown:      nil,
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.Message("")},
			expected:    false,
		},
		{
			name:        "nothing thrown with class",
			thrown:      nil,
			expectation: &domain.ErrorExpectation{ErrorClass: domain.ErrorClassOf[*exec.ExitError]()},
			expected:    false,
		},
		{
			name:        "message inspection panics",
			thrown:      &panickyError{},
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.Message("x")},
			expected:    false,
		},
		{
			name:        "panicked error value",
			thrown:      domain.NewPanicError(os.ErrClosed),
			expectation: &domain.ErrorExpectation{ErrorMessage: domain.Message(os.ErrClosed.Error())},
			expected:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := ErrorsMatch(tt.thrown, tt.expectation)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, matched)
		})
	}
}

func TestErrorsMatch_EmptyExpectation(t *testing.T) {
	matched, err := ErrorsMatch(errors.New("x"), &domain.ErrorExpectation{})
	assert.False(t, matched)
	assert.True(t, domain.IsDefinitionError(err))

	_, err = ErrorsMatch(errors.New("x"), nil)
	assert.True(t, domain.IsDefinitionError(err))
}
