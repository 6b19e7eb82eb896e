package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers. Kinds are stable and map onto HTTP
// statuses and CLI exit codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindParse
	KindFormatUnsupported
	KindIntegrity
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindParse:
		return "PARSE"
	case KindFormatUnsupported:
		return "FORMAT_UNSUPPORTED"
	case KindIntegrity:
		return "INTEGRITY"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// MarshalText renders the kind as its upper-case name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Problem is a single located issue found while parsing or validating a document.
type Problem struct {
	Section string `json:"section,omitempty"`
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	var b strings.Builder
	if p.Section != "" {
		b.WriteString("[" + p.Section + "] ")
	}
	if p.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", p.Line)
	}
	if p.Field != "" {
		b.WriteString(p.Field + ": ")
	}
	b.WriteString(p.Message)
	return b.String()
}

// Error is the tagged error value returned by every core operation.
type Error struct {
	Kind     Kind
	Op       string    // Operation that failed, e.g. "decode.prevalidate"
	Message  string    // Human-readable summary
	Problems []Problem // Collected problems, if any
	Err      error     // Underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op + ": ")
	}
	b.WriteString(strings.ToLower(e.Kind.String()))
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if n := len(e.Problems); n > 0 {
		fmt.Fprintf(&b, " (%d problem", n)
		if n > 1 {
			b.WriteString("s")
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new tagged error.
func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Errorf creates a new tagged error with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err. Untagged errors are KindInternal.
// A ValidationError is KindValidation.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindInternal
}

// ProblemsOf returns the problems attached to err, if any.
func ProblemsOf(err error) []Problem {
	var e *Error
	if errors.As(err, &e) {
		return e.Problems
	}
	return nil
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// isCancellation reports whether err came from a cancelled or expired context.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Exit codes returned by the CLI for each error kind.
const (
	ExitOK                = 0
	ExitInternal          = 1
	ExitValidation        = 2
	ExitParse             = 3
	ExitFormatUnsupported = 4
	ExitIntegrity         = 5
	ExitNotFound          = 6
	ExitConflict          = 7
)

// ExitCode maps err onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindValidation:
		return ExitValidation
	case KindParse:
		return ExitParse
	case KindFormatUnsupported:
		return ExitFormatUnsupported
	case KindIntegrity:
		return ExitIntegrity
	case KindNotFound:
		return ExitNotFound
	case KindConflict:
		return ExitConflict
	default:
		return ExitInternal
	}
}
