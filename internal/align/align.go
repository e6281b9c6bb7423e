// Package align reconciles a submitted table with the rows the engine
// reported for it.
//
// The engine can report fewer rows than were submitted, for instance when a
// scenario fails fast and later scenarios never run. Rows is a pure function
// so the reconciliation can be tested without running anything.
package align

import (
	"strings"

	"github.com/eykd/cukable-go/internal/results"
	"github.com/eykd/cukable-go/internal/table"
)

// Rows aligns original against got along a longest common subsequence of
// their normalized rows and returns one row per alignment step. Rows found
// only in original come back with every cell tagged ignore. For matched,
// changed and inserted rows the engine's row is returned verbatim, so when
// got is a subsequence of original the result has exactly len(original)
// rows.
func Rows(original table.Table, got []results.Row) []results.Row {
	a := make([]string, len(original))
	for i, row := range original {
		a[i] = normalize(row, submittedCell)
	}
	b := make([]string, len(got))
	for i, row := range got {
		b[i] = normalize(row, resultCell)
	}

	out := make([]results.Row, 0, len(original))
	for _, st := range sdiff(a, b) {
		switch st.op {
		case opMatch, opChange, opInsert:
			out = append(out, got[st.j])
		case opDelete:
			out = append(out, results.IgnoreRow(original[st.i]))
		}
	}
	return out
}

func submittedCell(cell string) string {
	return strings.TrimSpace(table.Unescape(cell))
}

func resultCell(cell string) string {
	return strings.TrimSpace(table.Unescape(results.CleanCell(cell)))
}

// normalize renders a row the way it appears in the scenario file, so that a
// submitted row and the engine's report of it compare equal: sub-table rows
// (leading empty cell) as "| a | b |", every other row as its cells joined by
// spaces.
func normalize(row []string, clean func(string) string) string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = clean(c)
	}
	if len(cells) > 1 && cells[0] == "" {
		return "| " + strings.Join(cells[1:], " | ") + " |"
	}
	return strings.Join(cells, " ")
}
