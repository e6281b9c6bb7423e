// Package feature materializes wiki tables as Gherkin scenario documents the
// engine can run.
package feature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/eykd/cukable-go/internal/table"
)

// ErrMalformedTable is returned for a table that cannot be run: it must have
// exactly one Feature: row and at least one Scenario: or Scenario Outline: row.
var ErrMalformedTable = errors.New("malformed table")

var (
	featureRowRE  = regexp.MustCompile(`^\s*Feature:`)
	scenarioRowRE = regexp.MustCompile(`^\s*Scenario( Outline)?:`)
)

// Validate checks that t is ready to run.
func Validate(t table.Table) error {
	var features, scenarios int
	for _, row := range t {
		if len(row) == 0 {
			continue
		}
		if featureRowRE.MatchString(row[0]) {
			features++
		}
		if scenarioRowRE.MatchString(row[0]) {
			scenarios++
		}
	}
	if features != 1 {
		return fmt.Errorf("%w: table needs exactly one 'Feature:' row, found %d", ErrMalformedTable, features)
	}
	if scenarios < 1 {
		return fmt.Errorf("%w: table needs at least one 'Scenario:' or 'Scenario Outline:' row", ErrMalformedTable)
	}
	return nil
}

// Render returns the scenario document lines for t. A row whose first cell
// is empty is a sub-table row and renders as "  | a | b |"; any other row
// renders as its cells joined by spaces. Cells are unescaped so scenario
// outline placeholders and wiki words come through as written.
func Render(t table.Table) []string {
	lines := make([]string, 0, len(t))
	for _, row := range t {
		switch {
		case len(row) == 0:
			lines = append(lines, "")
		case strings.TrimSpace(row[0]) == "":
			lines = append(lines, "  | "+table.Unescape(strings.Join(row[1:], " | "))+" |")
		default:
			lines = append(lines, table.Unescape(strings.Join(row, " ")))
		}
	}
	return lines
}

// WriteImpl validates t and writes it as a scenario document at path,
// creating the directory if needed. Nothing is written for a malformed table.
// This is an Impl function exempt from coverage requirements.
func WriteImpl(path string, t table.Table) error {
	if err := Validate(t); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content := strings.Join(Render(t), "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}
