package ui

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"virtest/internal/domain"
)

// PrintTestList prints the test files and, optionally, the groups and tests
// each one declared. Files in failed are marked with [F] (from the last run).
func (f *Formatter) PrintTestList(files []string, groups []domain.TestGroupOutput, showTests bool, failed map[string]struct{}) {
	byFile := make(map[string][]domain.TestGroupOutput)
	for _, group := range groups {
		byFile[group.FileSource] = append(byFile[group.FileSource], group)
	}

	if showTests {
		fmt.Fprintln(f.out, successColor.Sprintf("Found %d test file(s) with test groups:", len(files)))
	} else {
		fmt.Fprintln(f.out, successColor.Sprintf("Found %d test file(s):", len(files)))
	}
	fmt.Fprintln(f.out)

	for i, file := range files {
		lastFile := i == len(files)-1
		connector, prefix := "├── ", "│   "
		if lastFile {
			connector, prefix = "└── ", "    "
		}

		marker := ""
		if _, ok := failed[filepath.Clean(file)]; ok {
			marker = " " + color.RedString("[F]")
		}
		fmt.Fprintln(f.out, connector+color.CyanString(f.relPath(file))+marker)

		if !showTests {
			continue
		}
		fileGroups := byFile[file]
		if len(fileGroups) == 0 {
			fmt.Fprintln(f.out, prefix+"└── "+color.RedString("(no test groups found)"))
			continue
		}
		for j, group := range fileGroups {
			f.printGroupEntry(group, prefix, j == len(fileGroups)-1)
		}
	}
}

func (f *Formatter) printGroupEntry(group domain.TestGroupOutput, prefix string, last bool) {
	connector, childPrefix := "├── ", prefix+"│   "
	if last {
		connector, childPrefix = "└── ", prefix+"    "
	}

	name := group.Description + groupFlags(group.ForceOnly, group.Exclude)
	fmt.Fprintln(f.out, prefix+connector+color.YellowString(name)+" "+
		infoColor.Sprintf("(%d test%s)", len(group.Tests), plural(len(group.Tests))))

	for i, test := range group.Tests {
		testConnector := "├── "
		if i == len(group.Tests)-1 {
			testConnector = "└── "
		}
		props := test.Input.Properties()
		name := props.Description
		if name == "" {
			name = test.Caller.Format(false, true)
		}
		fmt.Fprintln(f.out, childPrefix+testConnector+name+groupFlags(props.ForceOnly, props.Exclude))
	}
}

func groupFlags(forceOnly, exclude bool) string {
	switch {
	case forceOnly && exclude:
		return warnColor.Sprint(" [only, exclude]")
	case forceOnly:
		return warnColor.Sprint(" [only]")
	case exclude:
		return warnColor.Sprint(" [exclude]")
	}
	return ""
}
