package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"virtest/internal/domain"
	"virtest/internal/storage"
)

const maxStackLines = 10

// ErrorViewer browses the failures of the last report in a TUI. Marking a
// failure resolved writes the report back through its storage.
type ErrorViewer struct {
	storage storage.Storage
	logger  zerolog.Logger
}

// NewErrorViewer creates a new ErrorViewer.
func NewErrorViewer(st storage.Storage, logger zerolog.Logger) *ErrorViewer {
	return &ErrorViewer{storage: st, logger: logger}
}

// View opens the browser for results and blocks until it is closed.
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	b := newFailureBrowser(ev, results)
	if err := b.app.SetRoot(b.layout(), true).SetFocus(b.list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// failureBrowser holds the widgets and resolved marks of one View call.
type failureBrowser struct {
	viewer   *ErrorViewer
	results  *domain.TestResultsOutput
	resolved map[int]bool

	app     *tview.Application
	list    *tview.List
	header  *tview.TextView
	stats   *tview.TextView
	details *tview.TextView
}

func newFailureBrowser(ev *ErrorViewer, results *domain.TestResultsOutput) *failureBrowser {
	b := &failureBrowser{
		viewer:   ev,
		results:  results,
		resolved: make(map[int]bool),
		app:      tview.NewApplication(),
		list: tview.NewList().
			ShowSecondaryText(false).
			SetHighlightFullLine(true),
		header:  tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true),
		stats:   tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		details: tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true),
	}
	for i, failure := range results.Details {
		b.resolved[i] = failure.Resolved
		b.list.AddItem(listItemText(failure, i, failure.Resolved), "", 0, nil)
	}

	b.list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	b.list.SetChangedFunc(func(int, string, string, rune) { b.showSelected() })
	b.list.SetInputCapture(b.onListKey)
	b.details.SetInputCapture(b.onDetailsKey)

	b.refreshHeader()
	b.showSelected()
	return b
}

func (b *failureBrowser) layout() tview.Primitive {
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.stats, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(b.details, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		AddItem(b.list, 0, 1, true).
		AddItem(right, 0, 2, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)
}

func (b *failureBrowser) onListKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter, tcell.KeyRight:
		b.app.SetFocus(b.details)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'r', 'R':
			b.toggle(b.list.GetCurrentItem())
			return nil
		case 'q':
			b.app.Stop()
			return nil
		}
	}
	return event
}

func (b *failureBrowser) onDetailsKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyEsc:
		b.app.SetFocus(b.list)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	}
	return event
}

// toggle flips the resolved mark of failure index and persists the report.
func (b *failureBrowser) toggle(index int) {
	if index < 0 || index >= len(b.results.Details) {
		return
	}
	b.resolved[index] = !b.resolved[index]
	b.list.SetItemText(index, listItemText(b.results.Details[index], index, b.resolved[index]), "")
	b.refreshHeader()
	b.showSelected()

	applyResolved(b.results, b.resolved)
	if err := b.viewer.storage.SaveOutput(b.results); err != nil {
		b.viewer.logger.Error().Err(err).Msg("failed to save resolved status")
	}
}

func (b *failureBrowser) refreshHeader() {
	b.header.SetText(headerText(len(b.results.Details), unresolvedCount(len(b.results.Details), b.resolved)))
}

func (b *failureBrowser) showSelected() {
	index := b.list.GetCurrentItem()
	if index < 0 || index >= len(b.results.Details) {
		return
	}
	failure := b.results.Details[index]
	b.stats.SetText(b.viewer.formatFailureStats(failure, index+1))
	b.details.SetText(b.viewer.formatFailureDetails(failure)).ScrollToBeginning()
}

func headerText(total, unresolved int) string {
	return fmt.Sprintf(" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, q quit ",
		total, unresolved)
}

// applyResolved copies the toggled state back into the report.
func applyResolved(results *domain.TestResultsOutput, resolved map[int]bool) {
	for i := range results.Details {
		results.Details[i].Resolved = resolved[i]
	}
}

func unresolvedCount(total int, resolved map[int]bool) int {
	count := 0
	for i := 0; i < total; i++ {
		if !resolved[i] {
			count++
		}
	}
	return count
}

func listItemText(failure domain.TestFailure, index int, resolved bool) string {
	name := tview.Escape(failureTitle(failure, index+1))
	if resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

func failureTitle(failure domain.TestFailure, number int) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}
	if failure.GroupName != "" {
		name = failure.GroupName + " › " + name
	}
	return name
}

// formatFailureDetails renders one failure with tview color tags.
func (ev *ErrorViewer) formatFailureDetails(failure domain.TestFailure) string {
	var sb strings.Builder
	section := func(title, body string) {
		if body != "" {
			fmt.Fprintf(&sb, "[yellow]%s:[white]\n%s\n\n", title, tview.Escape(body))
		}
	}

	fmt.Fprintf(&sb, "[red]✗ Test: %s[white]\n", tview.Escape(failure.TestName))
	if failure.GroupName != "" {
		fmt.Fprintf(&sb, "[cyan]Group: %s[white]\n", tview.Escape(failure.GroupName))
	}
	fmt.Fprintf(&sb, "[cyan]State: %s[white]\n\n", failure.ResultState)

	fmt.Fprintf(&sb, "[cyan]File: %s[white]\n", tview.Escape(failure.FilePath))
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(&sb, "[yellow]Location: %s:%d[white]\n", tview.Escape(failure.File), failure.Line)
	}
	sb.WriteString("\n")

	section("Message", failure.Message)
	section("Input", failure.ErrorDetails)

	if len(failure.StackTrace) > 0 {
		sb.WriteString("[yellow]Stack Trace:[white]\n")
		shown := failure.StackTrace
		if len(shown) > maxStackLines {
			shown = shown[:maxStackLines]
		}
		for _, frame := range shown {
			fmt.Fprintf(&sb, "  %s\n", tview.Escape(frame))
		}
		if extra := len(failure.StackTrace) - len(shown); extra > 0 {
			fmt.Fprintf(&sb, "  [gray]... and %d more lines[white]\n", extra)
		}
	}
	return sb.String()
}

// formatFailureStats renders the path::title header line.
func (ev *ErrorViewer) formatFailureStats(failure domain.TestFailure, number int) string {
	location := failure.FilePath
	if location == "" {
		location = "Unknown path"
	}
	if failure.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, failure.Line)
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(location), tview.Escape(failureTitle(failure, number)))
}
