// Package wiki writes wiki pages on disk: page directories with content and
// properties files, and whole page trees converted from scenario files.
package wiki

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	wordStartRE = regexp.MustCompile(`^[a-z]|[_.\s\-]+[a-z]`)
	separatorRE = regexp.MustCompile(`[_.\s\-]`)
	wikiWordRE  = regexp.MustCompile(`([A-Z][a-z]*){2}`)
	wordEndRE   = regexp.MustCompile(`.\b`)
)

// Wikify turns s into a WikiWord: each word separated by an underscore,
// period, space or hyphen is capitalized and the separators are removed, so
// "file.extension" becomes "FileExtension". A single word has its last
// letter capitalized instead, so "foo" becomes "FoO". Inputs that produce
// consecutive capitals, such as two-letter words, are not valid WikiWords.
func Wikify(s string) string {
	s = wordStartRE.ReplaceAllStringFunc(s, strings.ToUpper)
	s = separatorRE.ReplaceAllString(s, "")
	if wikiWordRE.MatchString(s) {
		return s
	}
	return wordEndRE.ReplaceAllStringFunc(s, strings.ToUpper)
}

// WikifyPath wikifies every component of a slash-separated path:
// "basic/some.feature" becomes "BasiC/SomeFeature". The result uses the
// OS separator.
func WikifyPath(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	out := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, Wikify(part))
	}
	return filepath.Join(out...)
}
