package results

import (
	"regexp"
	"strings"
)

var (
	boldRE = regexp.MustCompile(`<b>|</b>`)
	// <br> and everything after it: backtraces and source locations.
	breakRE = regexp.MustCompile(`<br/?>.*`)
	spanRE  = regexp.MustCompile(`<span[^>]*>.*</span>`)
)

const undefinedStep = "(Undefined Step)"

// CleanCell strips what the formatting plugin adds to a cell (status tag, bold
// argument markup, line breaks with trailing detail, source-location spans,
// the undefined-step marker) so it can be compared with the submitted cell.
//
//	CleanCell("pass:Given some <b>bold</b> text") // "Given some bold text"
func CleanCell(cell string) string {
	_, s := SplitCell(strings.TrimSpace(cell))
	s = boldRE.ReplaceAllString(s, "")
	s = breakRE.ReplaceAllString(s, "")
	s = spanRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, undefinedStep, "")
	return strings.TrimSpace(s)
}

// MergeDiffRows collapses each expected/actual pair left by a table diff into
// a single report row so the results keep one row per submitted row. An
// expected row has every cell ignored; the actual row directly after it has
// every cell in error and the same width. Cells that match become pass, the
// rest fail with both values shown.
func MergeDiffRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		if i+1 < len(rows) && isExpectedRow(rows[i]) && isActualRow(rows[i+1]) && len(rows[i]) == len(rows[i+1]) {
			out = append(out, mergePair(rows[i], rows[i+1]))
			i++
			continue
		}
		out = append(out, rows[i])
	}
	return out
}

// isExpectedRow excludes tag rows, which the plugin also reports as ignored.
func isExpectedRow(row Row) bool {
	if !allStatus(row, StatusIgnore) {
		return false
	}
	for _, cell := range row {
		if strings.HasPrefix(cell, string(StatusIgnore)+":@") {
			return false
		}
	}
	return true
}

// isActualRow excludes undefined steps, which the plugin also reports as errors.
func isActualRow(row Row) bool {
	if !allStatus(row, StatusError) {
		return false
	}
	for _, cell := range row {
		if strings.Contains(cell, undefinedStep) {
			return false
		}
	}
	return true
}

func mergePair(expected, actual Row) Row {
	merged := Row{StatusReport.Cell(" ")}
	for i := range expected {
		_, want := SplitCell(expected[i])
		_, got := SplitCell(actual[i])
		if want == got {
			merged = append(merged, StatusPass.Cell(got))
			continue
		}
		merged = append(merged, StatusFail.Cell("Expected: '"+want+"'<br/>Actual: '"+got+"'"))
	}
	return merged
}
