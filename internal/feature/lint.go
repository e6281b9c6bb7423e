package feature

import (
	"fmt"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
)

// Lint parses a scenario document with the Gherkin parser the engine uses
// and returns the parser's error, if any. Validate only checks the headers;
// Lint also catches misplaced steps and malformed tables.
func Lint(lines []string) error {
	src := strings.NewReader(strings.Join(lines, "\n") + "\n")
	doc, err := gherkin.ParseGherkinDocument(src, (&messages.Incrementing{}).NewId)
	if err != nil {
		return err
	}
	if doc.Feature == nil {
		return fmt.Errorf("%w: document has no Feature", ErrMalformedTable)
	}
	return nil
}
