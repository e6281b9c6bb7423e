package table

import (
	"regexp"
	"strings"
)

var (
	featureRE  = regexp.MustCompile(`^Feature:`)
	sectionRE  = regexp.MustCompile(`^(Background:|Scenario:|Scenario Outline:)`)
	tagLineRE  = regexp.MustCompile(`^@\S+(\s+@\S+)*$`)
	rowLineRE  = regexp.MustCompile(`^\|.+\|$`)
	commentRE  = regexp.MustCompile(`^#`)
	sentinelRE = regexp.MustCompile(`\| *Table *: *Cuke *\| *$`)
	wikiRowRE  = regexp.MustCompile(`\|.*\|\s*$`)
)

// encodeState is a state of the scenario -> wiki encoder.
type encodeState int

const (
	encodeStart encodeState = iota
	encodePreamble
	encodeBody
)

// encoder accumulates wiki output for ScenarioToWiki.
type encoder struct {
	state    encodeState
	preamble []string
	rows     []string
}

// ScenarioToWiki converts the lines of a Gherkin feature into FitNesse
// wikitext. Free text between the Feature: line and the first
// Background/Scenario/Scenario Outline is emitted ahead of the table,
// followed by one blank line; everything else becomes rows of a single Cuke
// table. Comment and blank lines are dropped.
func ScenarioToWiki(lines []string) []string {
	e := &encoder{rows: []string{Sentinel}}
	for _, line := range lines {
		e.feed(Literalize(line))
	}
	out := make([]string, 0, len(e.preamble)+1+len(e.rows))
	if len(e.preamble) > 0 {
		out = append(out, e.preamble...)
		out = append(out, "")
	}
	return append(out, e.rows...)
}

func (e *encoder) feed(line string) {
	switch {
	case featureRE.MatchString(line):
		e.cell(line)
		e.state = encodePreamble
	case sectionRE.MatchString(line):
		e.cell(line)
		e.state = encodeBody
	case tagLineRE.MatchString(line):
		for _, tag := range strings.Fields(line) {
			e.cell(tag)
		}
	default:
		switch e.state {
		case encodePreamble:
			e.preambleLine(line)
		default:
			e.bodyLine(line)
		}
	}
}

// preambleLine handles free text while in the preamble section.
func (e *encoder) preambleLine(line string) {
	if line != "" {
		e.preamble = append(e.preamble, line)
	}
}

// bodyLine handles steps, sub-table rows and comments outside the preamble.
func (e *encoder) bodyLine(line string) {
	switch {
	case line == "":
	case rowLineRE.MatchString(line):
		e.rows = append(e.rows, "| "+line)
	case commentRE.MatchString(line):
	default:
		e.cell(line)
	}
}

func (e *encoder) cell(text string) {
	e.rows = append(e.rows, "| "+text+" |")
}

// decodeState is a state of the wiki -> table decoder.
type decodeState int

const (
	decodeOutside decodeState = iota
	decodeInTable
)

// decoder accumulates tables for WikiToTables.
type decoder struct {
	state   decodeState
	current Table
	tables  []Table
}

// WikiToTables returns every Cuke table found in the lines of a wiki page, in
// page order. Each cell is trimmed and unescaped. A new sentinel inside an
// open table closes that table first, and a table still open at the end of
// input is kept. Returns an empty slice when the page has no Cuke tables.
func WikiToTables(lines []string) []Table {
	d := &decoder{tables: []Table{}}
	for _, line := range lines {
		d.feed(strings.TrimSpace(line))
	}
	d.flush()
	return d.tables
}

func (d *decoder) feed(line string) {
	if sentinelRE.MatchString(line) {
		d.flush()
		d.state = decodeInTable
		d.current = Table{}
		return
	}
	switch d.state {
	case decodeInTable:
		d.inTable(line)
	case decodeOutside:
	}
}

func (d *decoder) inTable(line string) {
	if !wikiRowRE.MatchString(line) {
		d.flush()
		return
	}
	d.current = append(d.current, SplitRow(line))
}

// flush closes the open table, if any.
func (d *decoder) flush() {
	if d.state != decodeInTable {
		return
	}
	d.tables = append(d.tables, d.current)
	d.current = nil
	d.state = decodeOutside
}

// SplitRow splits a wiki row such as "| | a | b |" into its unescaped,
// trimmed cells ("", "a", "b"). Text before the first pipe and after the
// last pipe is discarded.
func SplitRow(line string) []string {
	first := strings.Index(line, "|")
	last := strings.LastIndex(line, "|")
	if first < 0 || last <= first {
		return []string{}
	}
	parts := strings.Split(line[first+1:last], "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(Unescape(p))
	}
	return cells
}
