package core

// convert.go provides conversion between CSV cells and model values.
//
// These functions handle the reality of documents that went through a
// spreadsheet:
//   - Surrounding whitespace on any cell
//   - Excel formula wrappers (="12") on numeric cells
//   - Empty cells for absent optional numbers
//
// Parsing is strict otherwise: a non-empty cell that is not a number is an
// error, never a silent NULL.

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotInteger = errors.New("invalid integer")
	errNotNumber  = errors.New("invalid number")
	errIntRange   = errors.New("integer out of range")
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// Cell returns the trimmed value of column name in row.
// present is false when the column is not in the header or the row is short.
func (h HeaderIndex) Cell(row []string, name string) (value string, present bool) {
	pos, ok := h[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[pos]), true
}

// Text returns the trimmed value of column name, or "" when absent.
func (h HeaderIndex) Text(row []string, name string) string {
	v, _ := h.Cell(row, name)
	return v
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Unwraps Excel formula text (="...")
// - Strips a UTF-8 byte order mark
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}

	return s
}

// ParseID parses a required positive identifier.
func ParseID(s string) (int64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, errNotInteger
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	return id, nil
}

// ParseInt parses a required integer.
func ParseInt(s string) (int, error) {
	n, err := ParseOptionalInt(s)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, errNotInteger
	}
	return *n, nil
}

// ParseOptionalInt parses a 32-bit integer. An empty cell is nil.
func ParseOptionalInt(s string) (*int, error) {
	s = CleanCell(s)
	if s == "" {
		return nil, nil
	}
	n64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, errIntRange
		}
		return nil, errNotInteger
	}
	n := int(n64)
	return &n, nil
}

// ParseOptionalFloat parses a finite decimal number. An empty cell is nil.
func ParseOptionalFloat(s string) (*float64, error) {
	s = CleanCell(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotNumber
	}
	return &f, nil
}

// FormatID formats an identifier for a CSV cell.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FormatOptionalInt formats an optional integer; nil becomes "".
func FormatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// FormatOptionalFloat formats an optional number using the shortest
// representation that parses back to the same value; nil becomes "".
func FormatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
