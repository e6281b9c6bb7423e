package table

import (
	"html"
	"regexp"
	"strings"
)

const (
	literalOpen  = "!-"
	literalClose = "-!"
)

var (
	// FitNesse TextMaker email pattern.
	emailRE = regexp.MustCompile(`[\w\-_.]+@[\w\-_.]+\.[\w\-_.]+`)
	// FitNesse WikiWord pattern.
	camelCaseRE = regexp.MustCompile(`\b[A-Z](?:[a-z0-9]+[A-Z][a-z0-9]*)+`)
	urlRE       = regexp.MustCompile(`http[^ ]+`)
	literalRE   = regexp.MustCompile(`!-(.*?)-!`)
	anchorRE    = regexp.MustCompile(`<a [^>]*>([^<]*)</a>`)
)

// Literalize returns s, trimmed, with email addresses, CamelCase words and
// URLs wrapped in FitNesse's !-...-! literal markup so the wiki does not turn
// them into links. Text already inside a literal is left alone.
func Literalize(s string) string {
	s = strings.TrimSpace(s)
	for _, re := range []*regexp.Regexp{emailRE, camelCaseRE, urlRE} {
		s = literalizeOutside(s, re)
	}
	return s
}

// literalizeOutside wraps matches of re that fall outside existing literals.
func literalizeOutside(s string, re *regexp.Regexp) string {
	var b strings.Builder
	for s != "" {
		start := strings.Index(s, literalOpen)
		if start < 0 {
			b.WriteString(re.ReplaceAllString(s, literalOpen+"${0}"+literalClose))
			break
		}
		end := strings.Index(s[start+len(literalOpen):], literalClose)
		if end < 0 {
			b.WriteString(re.ReplaceAllString(s, literalOpen+"${0}"+literalClose))
			break
		}
		end += start + len(literalOpen) + len(literalClose)
		b.WriteString(re.ReplaceAllString(s[:start], literalOpen+"${0}"+literalClose))
		b.WriteString(s[start:end])
		s = s[end:]
	}
	return b.String()
}

// Unescape decodes HTML entities in s and removes FitNesse !-...-! literal
// markup. It is the single normalization used for rendering scenario files,
// fingerprinting, and aligning results.
func Unescape(s string) string {
	return literalRE.ReplaceAllString(html.UnescapeString(s), "$1")
}

// RemoveCruft strips FitNesse-generated anchor tags from s, keeping their
// text, and removes "[?]" missing-page markers.
//
//	RemoveCruft(`Go to <a href="SomePage">this page</a>`) // "Go to this page"
func RemoveCruft(s string) string {
	return strings.ReplaceAll(anchorRE.ReplaceAllString(s, "$1"), "[?]", "")
}
