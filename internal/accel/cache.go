package accel

import "github.com/eykd/cukable-go/internal/table"

// Cache maps table fingerprints to the result artifact a batch run produced
// for that table. It lives for one batch: the Controller resets it whenever
// it accepts a new batch root. Not safe for concurrent use; the Controller
// serializes access.
type Cache struct {
	entries map[table.Fingerprint]string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[table.Fingerprint]string)}
}

// Store records the artifact path for fp, replacing any earlier entry.
func (c *Cache) Store(fp table.Fingerprint, artifact string) {
	c.entries[fp] = artifact
}

// Lookup returns the artifact path recorded for fp.
func (c *Cache) Lookup(fp table.Fingerprint) (string, bool) {
	path, ok := c.entries[fp]
	return path, ok
}

// Reset drops every entry.
func (c *Cache) Reset() {
	clear(c.entries)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
