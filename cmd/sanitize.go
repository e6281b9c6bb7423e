package cmd

import "strings"

// sanitizePath replaces control characters (runes < 0x20 or == 0x7F) with '?'
// so file and page paths printed by convert and lint cannot carry terminal
// escape sequences.
func sanitizePath(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '?'
		}
		return r
	}, s)
}
