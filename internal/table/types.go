// Package table converts between Gherkin scenario documents and FitNesse wiki
// tables, and fingerprints table content for the result cache.
//
// All functions in this package are pure: they take lines in and return lines
// or tables out, with no I/O.
package table

// Table is a wiki table: an ordered list of rows, each an ordered list of
// cell strings.
type Table [][]string

// Fingerprint is the content digest of a Table, used as a result-cache key.
type Fingerprint string

// Sentinel is the header row that opens a Cuke table on a wiki page.
const Sentinel = "!| Table: Cuke |"

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = append([]string(nil), row...)
	}
	return out
}
