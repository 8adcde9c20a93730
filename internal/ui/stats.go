package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"virtest/internal/domain"
)

// PrintMetaStats displays the statistics of a stored run followed by a tree
// of its unresolved failures.
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Test Execution Statistics")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", Align: text.AlignRight},
	})
	t.AppendRows([]table.Row{
		{"Run", meta.RunID},
		{"Groups", meta.TotalGroups},
		{"Tests", meta.TotalTests},
		{"Passed", meta.PassedTests},
		{"Failed", meta.FailedTests},
		{"Ignored", meta.IgnoredTests},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Timestamp", meta.Timestamp},
	})

	switch {
	case meta.FailedTests > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case meta.IgnoredTests > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}
	t.Render()

	fmt.Fprintln(f.out)
	if meta.FailedTests == 0 {
		fmt.Fprintln(f.out, successColor.Sprint("✓ All tests passed!"))
		return
	}
	fmt.Fprintln(f.out, failColor.Sprintf("✗ %d test%s failed", meta.FailedTests, plural(meta.FailedTests)))
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsFile   bool
}

// printFailedTestsTree prints unresolved failures under their directories,
// files and groups.
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	root := &TreeNode{Children: make(map[string]*TreeNode)}

	for _, failure := range failures {
		if failure.Resolved {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(f.relPath(failure.FilePath), "./"), "/")
		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}
			current = current.Children[part]
		}
		current.Failures = append(current.Failures, failure)
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		last := i == len(keys)-1

		connector, nextPrefix := "├── ", prefix+"│   "
		if last {
			connector, nextPrefix = "└── ", prefix+"    "
		}

		if child.IsFile {
			fmt.Fprintln(f.out, prefix+connector+color.YellowString(child.Name))
			f.printFailures(child.Failures, nextPrefix)
			continue
		}
		fmt.Fprintln(f.out, prefix+connector+color.CyanString(child.Name))
		f.printTreeNode(child, nextPrefix)
	}
}

func (f *Formatter) printFailures(failures []domain.TestFailure, prefix string) {
	for i, failure := range failures {
		connector := "├── "
		if i == len(failures)-1 {
			connector = "└── "
		}
		name := failure.TestName
		if failure.GroupName != "" {
			name = failure.GroupName + " › " + name
		}
		location := ""
		if failure.Line > 0 {
			location = color.BlueString(" (line %d)", failure.Line)
		}
		fmt.Fprintln(f.out, prefix+connector+color.RedString(name)+location)
	}
}
