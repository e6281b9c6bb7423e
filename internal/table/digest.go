package table

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	cellSep = 0x1f // ASCII unit separator
	rowSep  = 0x1e // ASCII record separator
)

// Digest returns the fingerprint of t. Cells are unescaped before hashing, so
// tables that differ only in HTML-entity or literal markup share a
// fingerprint. Cell and row boundaries are part of the hashed content.
func Digest(t Table) Fingerprint {
	d := xxhash.New()
	for _, row := range t {
		for _, cell := range row {
			_, _ = d.WriteString(Unescape(cell))
			_, _ = d.Write([]byte{cellSep})
		}
		_, _ = d.Write([]byte{rowSep})
	}
	return Fingerprint(fmt.Sprintf("%016x", d.Sum64()))
}
