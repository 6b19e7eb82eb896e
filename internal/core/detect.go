package core

import (
	"errors"
	"strings"
)

var (
	// ErrLegacyFormat marks documents in the retired split-table format.
	ErrLegacyFormat = errors.New("legacy format")
	// ErrUnknownFormat marks documents with no recognized section.
	ErrUnknownFormat = errors.New("unrecognized format")
)

// Format classifies an input document.
type Format string

const (
	// FormatCurrent is the sectioned format with a [WORKOUT_SETS] table.
	FormatCurrent Format = "current"
	// FormatEmpty is a blank document: a current-format program with no rows.
	FormatEmpty Format = "empty"
	// FormatLegacy is the older format with split [DAY_EXERCISES] and [SETS] tables.
	FormatLegacy Format = "legacy"
	// FormatUnknown is anything else.
	FormatUnknown Format = "unknown"
)

const (
	markerLegacyDayExercises = "[DAY_EXERCISES]"
	markerLegacySets         = "[SETS]"
)

// Supported reports whether documents of this format can be imported.
func (f Format) Supported() bool {
	return f == FormatCurrent || f == FormatEmpty
}

// DetectFormat classifies doc by the section markers it contains.
// Markers match regardless of case, as the section parser does.
func DetectFormat(doc string) Format {
	if strings.TrimSpace(strings.TrimPrefix(doc, "\ufeff")) == "" {
		return FormatEmpty
	}
	doc = strings.ToUpper(doc)
	if strings.Contains(doc, marker(SectionWorkoutSets)) {
		return FormatCurrent
	}
	if strings.Contains(doc, markerLegacyDayExercises) && strings.Contains(doc, markerLegacySets) {
		return FormatLegacy
	}
	for _, def := range Sections() {
		if strings.Contains(doc, marker(def.Name)) {
			return FormatCurrent
		}
	}
	return FormatUnknown
}

// FormatDiagnostic returns a human-readable explanation for an unsupported format.
func FormatDiagnostic(f Format) string {
	switch f {
	case FormatLegacy:
		return "this file uses the legacy format with separate [DAY_EXERCISES] and [SETS] sections; export it again from a current version"
	case FormatUnknown:
		return "no recognized sections found; expected a complete export with sections such as [WORKOUT_GROUPS] and [WORKOUT_SETS]"
	default:
		return ""
	}
}

// checkFormat gates imports on the detected format.
func checkFormat(doc string) (Format, error) {
	f := DetectFormat(doc)
	if f.Supported() {
		return f, nil
	}
	cause := ErrUnknownFormat
	if f == FormatLegacy {
		cause = ErrLegacyFormat
	}
	return f, &Error{Kind: KindFormatUnsupported, Op: "decode.detect", Message: FormatDiagnostic(f), Err: cause}
}

func marker(section string) string {
	return "[" + section + "]"
}
