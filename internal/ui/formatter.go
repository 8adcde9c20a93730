package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"virtest/internal/config"
	"virtest/internal/domain"
	"virtest/internal/matcher"
)

const tab = "    "

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out. A nil out means stdout.
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

func (f *Formatter) debug() bool {
	return f.config != nil && f.config.Debug
}

// PrintResults writes every group and the final summary line.
func (f *Formatter) PrintResults(groups []domain.ResolvedTestGroupResults) {
	for _, group := range groups {
		fmt.Fprint(f.out, f.FormatGroup(group))
	}
	fmt.Fprintln(f.out, FinalMessage(groups))
}

// FormatGroup renders one group. Passing groups collapse to a single line
// unless debug output is on.
func (f *Formatter) FormatGroup(group domain.ResolvedTestGroupResults) string {
	passed := group.Success()
	ignored := ignoredCount(group)

	filePath := group.Caller.Format(true, !isResultError[*domain.FileNotFoundError](group))
	title := group.Description
	if title == "" {
		title = filePath
	}
	status := leader(passed, title, ignored > 0)

	if isResultError[*domain.FileNotFoundError](group) ||
		isResultError[*domain.FileNotUsedError](group) ||
		isResultError[*domain.EmptyTestGroupError](group) {
		return status + ": " + filePath + "\n"
	}

	var b strings.Builder
	b.WriteString(status)
	b.WriteString(" ")
	total := len(group.AllResults)
	if group.IgnoredReason.Ignored() {
		total = len(group.Tests)
	}
	b.WriteString(testCount(total, ignored))
	b.WriteString(" ")
	b.WriteString(infoColor.Sprint(filePath))
	b.WriteString("\n")

	if !passed || f.debug() {
		for _, result := range group.AllResults {
			b.WriteString(indent(f.FormatResult(result), 1))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatResult renders one test line, followed by the failure reason and
// the declared input when the test did not pass.
func (f *Formatter) FormatResult(result domain.IndividualTestResult) string {
	descriptor := result.Description()
	if descriptor == "" && result.Caller != nil {
		descriptor = result.Caller.Format(false, true)
	}

	line := leader(result.Success, descriptor, result.ResultState == domain.StateIgnored) +
		": " + result.ResultState.Explanation()

	var details []string
	if !result.Success {
		details = append(details, FailureReason(result))
		if result.Input != nil {
			details = append(details, "input: "+FormatInput(result.Input))
		}
	}
	if f.debug() && result.Output != nil {
		details = append(details, "output: "+formatValue(result.Output))
	}
	if len(details) == 0 {
		return line
	}
	return line + "\n" + indent(strings.Join(details, "\n"), 1)
}

// FailureReason explains why a result failed. Passing results have none.
func FailureReason(result domain.IndividualTestResult) string {
	if result.Success {
		return "Not a failure."
	}

	switch result.ResultState {
	case domain.StateExpectMatchFail:
		expected, _ := expectedValue(result.Input)
		reason := "expected: " + formatValue(expected) + "\n" +
			"  but got: " + formatValue(result.Output)
		if diff := matcher.Diff(expected, result.Output); diff != "" {
			reason += "\ndiff (-expected +got):\n" + indent(strings.TrimRight(diff, "\n"), 1)
		}
		return reason
	case domain.StateErrorMatchFail:
		var expectation *domain.ErrorExpectation
		if result.Input != nil {
			expectation = result.Input.ErrorExpected()
		}
		reason := "expected thrown error: " + expectation.String() + "\n"
		if result.Error == nil {
			return reason + "  but no error was thrown"
		}
		return reason + "  but got: " + describeThrown(result.Error)
	case domain.StateError:
		return "error: " + ErrorText(result.Error)
	default:
		return fmt.Sprintf("unexpected failed state %q", result.ResultState)
	}
}

// ErrorText renders an error with its stack when one is attached.
func ErrorText(err error) string {
	if err == nil {
		return "<nil>"
	}
	var panicErr *domain.PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		return err.Error() + "\n" + strings.TrimRight(string(panicErr.Stack), "\n")
	}
	if _, ok := err.(stackTracer); ok {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func describeThrown(err error) string {
	return fmt.Sprintf("{errorClass: %T, errorMessage: %q}", err, err.Error())
}

// FinalMessage is the one-line run summary.
func FinalMessage(groups []domain.ResolvedTestGroupResults) string {
	failures := domain.CountFailures(groups)
	if failures == 0 {
		return successColor.Sprint("All tests passed.")
	}
	return failColor.Sprintf("%d test%s failed", failures, plural(failures))
}

// inputView is the printable shape of a declared test.
type inputView struct {
	Description string `json:"description,omitempty"`
	ForceOnly   bool   `json:"forceOnly,omitempty"`
	Exclude     bool   `json:"exclude,omitempty"`
	Test        string `json:"test"`
	Expect      any    `json:"expect,omitempty"`
	ExpectError string `json:"expectError,omitempty"`
}

// FormatInput renders the declared input. Bodies are shown as "Function".
func FormatInput(input domain.Input) string {
	if input == nil {
		return "<none>"
	}
	if _, ok := input.(domain.Func); ok {
		return "Function"
	}
	props := input.Properties()
	view := inputView{
		Description: props.Description,
		ForceOnly:   props.ForceOnly,
		Exclude:     props.Exclude,
		Test:        "Function",
	}
	if expected, ok := input.Expected(); ok {
		view.Expect = expected
		if expected == nil {
			view.Expect = "<nil>"
		}
	}
	if expectation := input.ErrorExpected(); expectation != nil {
		view.ExpectError = expectation.String()
	}
	return formatValue(view)
}

func expectedValue(input domain.Input) (any, bool) {
	if input == nil {
		return nil, false
	}
	return input.Expected()
}

// formatValue prefers indented JSON and falls back to Go syntax for values
// JSON cannot carry.
func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func || rv.Kind() == reflect.Chan {
		return fmt.Sprintf("%T", v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}

func leader(success bool, description string, warn bool) string {
	word := failColor.Sprint("Failed")
	if success {
		word = successColor.Sprint("Passed")
		if warn {
			word = warnColor.Sprint("Passed")
		}
	}
	if description == "" {
		return word
	}
	return word + ": " + description
}

func ignoredCount(group domain.ResolvedTestGroupResults) int {
	if group.IgnoredReason.Ignored() {
		return len(group.Tests)
	}
	count := 0
	for _, result := range group.AllResults {
		if result.ResultState == domain.StateIgnored {
			count++
		}
	}
	return count
}

func testCount(total, ignored int) string {
	s := fmt.Sprintf("(%d test%s", total, plural(total))
	if ignored > 0 {
		s += fmt.Sprintf(", %s", warnColor.Sprintf("%d ignored", ignored))
	}
	return s + ")"
}

// isResultError reports whether the group is a single synthetic result
// carrying an error of type T.
func isResultError[T error](group domain.ResolvedTestGroupResults) bool {
	if len(group.AllResults) != 1 {
		return false
	}
	result := group.AllResults[0]
	if result.ResultState != domain.StateError || result.Error == nil {
		return false
	}
	var target T
	return errors.As(result.Error, &target)
}

func indent(s string, depth int) string {
	prefix := strings.Repeat(tab, depth)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// relPath returns path relative to the project when possible.
func (f *Formatter) relPath(path string) string {
	if f.config == nil || f.config.ProjectPath == "" {
		return path
	}
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
