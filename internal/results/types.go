// Package results reads the result artifacts the engine's formatting plugin
// writes, one JSON row list per scenario document, and normalizes their
// status-tagged cells.
package results

import "strings"

// Status is the tag at the front of a result cell, as in "pass:Given x".
type Status string

// Statuses emitted by the formatting plugin. Error marks an undefined step.
const (
	StatusPass   Status = "pass"
	StatusFail   Status = "fail"
	StatusError  Status = "error"
	StatusIgnore Status = "ignore"
	StatusReport Status = "report"
)

// Row is one row of engine output.
type Row []string

// Cell returns content tagged with status s.
func (s Status) Cell(content string) string {
	return string(s) + ":" + content
}

// SplitCell separates a result cell into its status and content. A cell with
// no colon has an empty status.
func SplitCell(cell string) (Status, string) {
	status, content, ok := strings.Cut(cell, ":")
	if !ok {
		return "", cell
	}
	return Status(status), content
}

// IgnoreRow tags every cell of row as ignored.
func IgnoreRow(row []string) Row {
	out := make(Row, len(row))
	for i, cell := range row {
		out[i] = StatusIgnore.Cell(cell)
	}
	return out
}

// allStatus reports whether every cell of row carries status s. Empty rows
// never match.
func allStatus(row Row, s Status) bool {
	if len(row) == 0 {
		return false
	}
	prefix := string(s) + ":"
	for _, cell := range row {
		if !strings.HasPrefix(cell, prefix) {
			return false
		}
	}
	return true
}
