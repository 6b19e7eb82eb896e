package core

// validation.go provides field and row validation shared by the codec, the
// service and the stores.
//
// Validation happens at two levels:
//  1. Field validation: Required, Positive and NonNegative check one value
//  2. Row validation: RowValidator checks a CSV row against its ColumnSpecs,
//     separating values that cannot be read at all (parse errors) from values
//     that were read but are out of range (validation errors)

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Required fails when value is empty after trimming.
func Required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: "required field is empty"}
	}
	return nil
}

// Positive fails when a present value is not greater than zero.
func Positive[T int | int64 | float64](value *T, field string) error {
	if value != nil && *value <= 0 {
		return ValidationError{Field: field, Value: fmt.Sprint(*value), Message: "must be greater than 0"}
	}
	return nil
}

// NonNegative fails when a present value is below zero.
func NonNegative[T int | int64 | float64](value *T, field string) error {
	if value != nil && *value < 0 {
		return ValidationError{Field: field, Value: fmt.Sprint(*value), Message: "must be 0 or greater"}
	}
	return nil
}

// Int32 fails when a present value does not fit a 32-bit integer column.
func Int32(value *int, field string) error {
	if value != nil && (*value > math.MaxInt32 || *value < math.MinInt32) {
		return ValidationError{Field: field, Value: strconv.Itoa(*value), Message: "out of range"}
	}
	return nil
}

// AsError converts validation failures into a VALIDATION error for op.
// Returns nil when every err is nil.
func AsError(op string, errs ...error) error {
	var problems []Problem
	for _, err := range errs {
		if err == nil {
			continue
		}
		if ve, ok := err.(ValidationError); ok {
			problems = append(problems, Problem{Field: ve.Field, Message: ve.Message})
			continue
		}
		problems = append(problems, Problem{Message: err.Error()})
	}
	if len(problems) == 0 {
		return nil
	}
	msg := problems[0].Field + ": " + problems[0].Message
	if problems[0].Field == "" {
		msg = problems[0].Message
	}
	return &Error{Kind: KindValidation, Op: op, Message: msg, Problems: problems}
}

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid       bool              // True if all validations passed
	ParseErrors []ValidationError // Values that could not be read as their column type
	Errors      []ValidationError // Values that were read but are not allowed
}

// RowValidator validates rows against a section's column specifications.
type RowValidator struct {
	specs     []ColumnSpec
	headerIdx HeaderIndex
}

// NewRowValidator creates a validator for the given columns and header index.
func NewRowValidator(specs []ColumnSpec, headerIdx HeaderIndex) *RowValidator {
	return &RowValidator{
		specs:     specs,
		headerIdx: headerIdx,
	}
}

// ValidateRow validates a single CSV row and returns all errors found.
func (v *RowValidator) ValidateRow(row []string) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, spec := range v.specs {
		raw, present := v.headerIdx.Cell(row, spec.Name)
		if !present {
			if spec.Required {
				result.Valid = false
				result.ParseErrors = append(result.ParseErrors, ValidationError{
					Field:   spec.Name,
					Message: "missing required column",
				})
			}
			continue
		}

		if raw == "" {
			if spec.Required && !spec.AllowEmpty {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   spec.Name,
					Message: "required field is empty",
				})
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			result.Valid = false
			if ve, ok := err.(ValidationError); ok {
				result.Errors = append(result.Errors, ve)
			} else {
				result.ParseErrors = append(result.ParseErrors, ValidationError{
					Field:   spec.Name,
					Value:   raw,
					Message: err.Error(),
				})
			}
		}
	}

	return result
}

// ValidateCell validates a single non-empty cell against its column spec.
// Type errors are returned as plain errors; domain errors as ValidationError.
func ValidateCell(value string, spec ColumnSpec) error {
	if value == "" {
		return nil
	}

	switch spec.Type {
	case FieldID:
		id, err := ParseID(value)
		if err != nil {
			return err
		}
		return Positive(&id, spec.Name)
	case FieldInt:
		n, err := ParseOptionalInt(value)
		if err != nil {
			return err
		}
		return checkDomain(n, spec)
	case FieldFloat:
		f, err := ParseOptionalFloat(value)
		if err != nil {
			return err
		}
		return checkDomain(f, spec)
	}
	return nil
}

func checkDomain[T int | float64](v *T, spec ColumnSpec) error {
	switch spec.Domain {
	case DomainPositive:
		return Positive(v, spec.Name)
	case DomainNonNegative:
		return NonNegative(v, spec.Name)
	}
	return nil
}

// ValidateHeaders checks a section header against its column specs.
// It returns the header index, the required columns that are missing, the
// header columns that are not part of the section and the columns named more
// than once.
func ValidateHeaders(headers []string, specs []ColumnSpec) (idx HeaderIndex, missing, unknown, duplicate []string) {
	idx = MakeHeaderIndex(headers)

	known := make(map[string]bool, len(specs))
	for _, spec := range specs {
		key := strings.ToLower(spec.Name)
		known[key] = true
		if _, ok := idx[key]; !ok && spec.Required {
			missing = append(missing, spec.Name)
		}
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if seen[key] {
			duplicate = append(duplicate, key)
			continue
		}
		seen[key] = true
		if !known[key] {
			unknown = append(unknown, key)
		}
	}

	return idx, missing, unknown, duplicate
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldID:
		return "id"
	case FieldInt:
		return "integer"
	case FieldFloat:
		return "number"
	case FieldText:
		return "text"
	default:
		return "value"
	}
}
