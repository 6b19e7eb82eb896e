package core

// parse.go splits a sectioned CSV document into typed rows.
//
// The document is read line by line. A line that is exactly a bracketed name
// (optionally followed by the trailing commas spreadsheets add) starts a new
// section, unless it falls inside a quoted multi-line value. Each section body
// is then read with encoding/csv: the first non-blank record is the header,
// every following non-blank record is a row.
//
// Problems are collected rather than returned one at a time so a user fixing
// a document in a spreadsheet sees every broken row at once.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var sectionHeaderRegex = regexp.MustCompile(`^\[([A-Za-z0-9_]+)\]$`)

// Document is a parsed sectioned CSV document.
type Document struct {
	Program

	Sections []string // Recognized sections in document order
	Warnings []string // Ignored sections and columns

	lines    map[string][]int // Document line of each decoded row, per section
	problems []Problem        // Value problems reported during pre-validation
}

// Has reports whether the document contained the named section.
func (d *Document) Has(section string) bool {
	for _, s := range d.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// line returns the document line of row i of section, or 0 if unknown.
func (d *Document) line(section string, i int) int {
	if rows := d.lines[section]; i < len(rows) {
		return rows[i]
	}
	return 0
}

type rawSection struct {
	name string
	line int      // Line of the [NAME] marker
	body []string // Lines after the marker
}

// ParseDocument parses doc into sections and typed rows.
// Any malformed structure, quoting or number is a PARSE error listing every
// problem found.
func ParseDocument(doc string) (*Document, error) {
	doc = strings.TrimPrefix(doc, "\ufeff")
	doc = strings.ReplaceAll(doc, "\r\n", "\n")

	d := &Document{lines: make(map[string][]int)}
	var problems []Problem

	raws, splitProblems := splitSections(doc)
	problems = append(problems, splitProblems...)

	seen := make(map[string]bool)
	for _, raw := range raws {
		def, known := Section(raw.name)
		if !known {
			d.Warnings = append(d.Warnings, fmt.Sprintf("ignored unknown section [%s] at line %d", raw.name, raw.line))
			continue
		}
		if seen[raw.name] {
			problems = append(problems, Problem{Section: raw.name, Line: raw.line, Message: "duplicate section"})
			continue
		}
		seen[raw.name] = true
		d.Sections = append(d.Sections, raw.name)

		problems = append(problems, d.parseSection(def, raw)...)
	}

	if len(problems) > 0 {
		return d, &Error{
			Kind:     KindParse,
			Op:       "decode.parse",
			Message:  problems[0].String(),
			Problems: problems,
		}
	}
	return d, nil
}

// splitSections cuts the document into raw sections.
func splitSections(doc string) ([]rawSection, []Problem) {
	var (
		sections []rawSection
		problems []Problem
		cur      *rawSection
		inQuote  bool
	)

	for i, line := range strings.Split(doc, "\n") {
		lineNo := i + 1

		if !inQuote {
			trimmed := strings.TrimRight(strings.TrimSpace(line), ",")
			if m := sectionHeaderRegex.FindStringSubmatch(trimmed); m != nil {
				sections = append(sections, rawSection{name: strings.ToUpper(m[1]), line: lineNo})
				cur = &sections[len(sections)-1]
				continue
			}
			if cur == nil {
				if strings.Trim(line, " \t,") != "" {
					problems = append(problems, Problem{Line: lineNo, Message: "data outside of any section"})
				}
				continue
			}
			if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
				problems = append(problems, Problem{Line: lineNo, Message: fmt.Sprintf("malformed section header %q", trimmed)})
				continue
			}
		}

		cur.body = append(cur.body, line)
		if strings.Count(line, `"`)%2 == 1 {
			inQuote = !inQuote
		}
	}

	return sections, problems
}

// parseSection reads the header and rows of one known section into d.
func (d *Document) parseSection(def SectionDefinition, raw rawSection) []Problem {
	var problems []Problem
	at := func(line int, field, msg string) {
		problems = append(problems, Problem{Section: def.Name, Line: line, Field: field, Message: msg})
	}

	r := csv.NewReader(strings.NewReader(strings.Join(raw.body, "\n")))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var (
		header    []string
		idx       HeaderIndex
		validator *RowValidator
	)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				at(raw.line+pe.StartLine, "", pe.Err.Error())
			} else {
				at(raw.line, "", err.Error())
			}
			return problems
		}

		line, _ := r.FieldPos(0)
		line += raw.line

		if isBlankRecord(record) {
			continue
		}

		if header == nil {
			header = trimRecord(record)
			var missing, unknown, duplicate []string
			idx, missing, unknown, duplicate = ValidateHeaders(header, def.Columns)
			for _, col := range missing {
				at(line, col, "missing required column")
			}
			if len(missing) > 0 {
				return problems
			}
			for _, col := range unknown {
				if def.StrictColumns {
					at(line, col, "unexpected column")
				} else {
					d.Warnings = append(d.Warnings, fmt.Sprintf("ignored column %q in [%s]", col, def.Name))
				}
			}
			for _, col := range duplicate {
				if def.StrictColumns {
					at(line, col, "duplicate column")
				} else {
					d.Warnings = append(d.Warnings, fmt.Sprintf("ignored repeated column %q in [%s]", col, def.Name))
				}
			}
			validator = NewRowValidator(def.Columns, idx)
			continue
		}

		if len(record) < len(header) {
			at(line, "", fmt.Sprintf("expected %d fields, got %d", len(header), len(record)))
			continue
		}
		if len(record) > len(header) && !isBlankRecord(record[len(header):]) {
			at(line, "", fmt.Sprintf("expected %d fields, got %d", len(header), len(record)))
			continue
		}

		result := validator.ValidateRow(record)
		for _, pe := range result.ParseErrors {
			msg := pe.Message
			if pe.Value != "" {
				msg = fmt.Sprintf("%s %q", pe.Message, pe.Value)
			}
			at(line, pe.Field, msg)
		}
		if len(result.ParseErrors) > 0 {
			continue
		}
		if len(result.Errors) > 0 {
			for _, ve := range result.Errors {
				d.problems = append(d.problems, Problem{Section: def.Name, Line: line, Field: ve.Field, Message: ve.Message})
			}
			continue
		}

		if err := def.DecodeRow(&d.Program, record, idx); err != nil {
			at(line, "", err.Error())
			continue
		}
		d.lines[def.Name] = append(d.lines[def.Name], line)
	}

	if header == nil {
		at(raw.line, "", "missing header row")
	}

	return problems
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimRecord(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = CleanCell(v)
	}
	return out
}
