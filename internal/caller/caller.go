// Package caller records where test groups and tests were declared.
package caller

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Separator joins the parts of a rendered caller.
const Separator = ":"

// Caller is the declaration site of a test or test group.
type Caller struct {
	FilePath     string `json:"file_path"`
	LineNumber   int    `json:"line_number"`
	ColumnNumber int    `json:"column_number"`
}

// Empty is returned when the declaration site cannot be determined.
var Empty = Caller{
	FilePath:     "caller file not found",
	LineNumber:   -1,
	ColumnNumber: -1,
}

// Capture returns the call site skip frames above the function that called
// Capture. Capture(0) is the line calling Capture, Capture(1) is its caller.
// The Go runtime has no column information, so ColumnNumber is always 0.
func Capture(skip int) Caller {
	if skip < 0 {
		return Empty
	}
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok || file == "" || line <= 0 {
		return Empty
	}
	return Caller{
		FilePath:     relativePath(file),
		LineNumber:   line,
		ColumnNumber: 0,
	}
}

// ForFile is an empty caller pointing at a file, used for synthetic results.
func ForFile(path string) Caller {
	c := Empty
	c.FilePath = path
	return c
}

func relativePath(file string) string {
	wd, err := os.Getwd()
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(wd, file)
	if err != nil {
		return file
	}
	return rel
}

// IsEmpty reports whether the line is unknown.
func (c Caller) IsEmpty() bool {
	return c.LineNumber < 0 || c.ColumnNumber < 0
}

// String renders file:line[:column].
func (c Caller) String() string {
	return c.Format(true, true)
}

// Format renders the caller with the file and/or line parts.
func (c Caller) Format(withFile, withLine bool) string {
	ignoreLine := !withLine || c.IsEmpty()

	var file string
	if withFile {
		file = c.FilePath
		if !ignoreLine {
			file += Separator
		}
	}
	if ignoreLine {
		return file
	}
	if c.ColumnNumber == 0 {
		return fmt.Sprintf("%s%d", file, c.LineNumber)
	}
	return fmt.Sprintf("%s%d%s%d", file, c.LineNumber, Separator, c.ColumnNumber)
}
