package parser

import (
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"
	"virtest/internal/domain"
	"virtest/internal/ui"
)

// maxStackLines caps the frames kept per failure.
const maxStackLines = 20

// ResultParser builds failure records from in-process results.
type ResultParser struct{}

// NewResultParser creates a new ResultParser
func NewResultParser() *ResultParser {
	return &ResultParser{}
}

// ParseFailures returns one record per failed result of group.
func (p *ResultParser) ParseFailures(group domain.ResolvedTestGroupResults) []domain.TestFailure {
	var failures []domain.TestFailure
	for i, result := range group.AllResults {
		if result.Success {
			continue
		}
		failures = append(failures, p.parseResult(group, i, result))
	}
	return failures
}

func (p *ResultParser) parseResult(group domain.ResolvedTestGroupResults, index int, result domain.IndividualTestResult) domain.TestFailure {
	failure := domain.TestFailure{
		GroupName:   group.Description,
		TestName:    testName(index, result),
		FilePath:    group.FileSource,
		ResultState: result.ResultState,
		Message:     stripansi.Strip(ui.FailureReason(result)),
		StackTrace:  []string{},
	}
	if failure.FilePath == "" {
		failure.FilePath = group.Caller.FilePath
	}

	if result.Caller != nil {
		failure.File = result.Caller.FilePath
		if !result.Caller.IsEmpty() {
			failure.Line = result.Caller.LineNumber
		}
	}
	if result.Input != nil {
		failure.ErrorDetails = stripansi.Strip(ui.FormatInput(result.Input))
	}
	if result.Error != nil {
		failure.StackTrace = stackFrames(ui.ErrorText(result.Error))
		if failure.File == "" {
			failure.File, failure.Line = firstFrame(failure.StackTrace)
		}
	}
	return failure
}

func testName(index int, result domain.IndividualTestResult) string {
	if name := result.Description(); name != "" {
		return name
	}
	if result.Caller != nil && !result.Caller.IsEmpty() {
		return "line " + result.Caller.Format(false, true)
	}
	return "test " + strconv.Itoa(index+1)
}

// stackFrames keeps the file:line lines of a rendered Go stack trace.
func stackFrames(rendered string) []string {
	frames := []string{}
	for _, line := range strings.Split(rendered, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, ".go:") {
			continue
		}
		// Drop the "+0x1f" program counter offset.
		if i := strings.LastIndex(trimmed, " +0x"); i > 0 {
			trimmed = trimmed[:i]
		}
		frames = append(frames, trimmed)
		if len(frames) == maxStackLines {
			break
		}
	}
	return frames
}

// firstFrame picks the first frame outside the Go runtime.
func firstFrame(frames []string) (string, int) {
	for _, frame := range frames {
		if strings.Contains(frame, "/runtime/") {
			continue
		}
		i := strings.LastIndex(frame, ":")
		if i <= 0 {
			continue
		}
		line, err := strconv.Atoi(frame[i+1:])
		if err != nil {
			continue
		}
		return frame[:i], line
	}
	return "", 0
}
