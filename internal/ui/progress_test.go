package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressDescription(t *testing.T) {
	assert.Equal(t, "Running tests: [passed: 3 | failed: 1]", progressDescription(3, 1))
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(2, &out)

	bar.Update(1, 0)
	bar.Update(1, 1)
	bar.Update(5, 5)
	bar.Finish()

	assert.Contains(t, out.String(), "passed: 1 | failed: 1")
	assert.Contains(t, out.String(), "2/2")
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(0, &out)

	bar.Finish()
	assert.NotEmpty(t, out.String())
}
