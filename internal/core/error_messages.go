// Package core provides the business logic for the workout program store.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Tagged errors are mapped by their [Kind] first:
//
//	VAL001   - A value is missing or out of range
//	           Action: Fix the listed fields and try again
//
//	PARSE001 - The document could not be read
//	           Action: Check quoting, section headers and numeric columns on the listed lines
//
//	FMT001   - Legacy document format
//	           Action: Export the program again from a current version
//
//	FMT002   - Unrecognized document format
//	           Action: Import a complete export with [WORKOUT_GROUPS] ... [WORKOUT_SETS] sections
//
//	INT001   - The document references rows it does not contain
//	           Action: Add the missing rows or fix the referencing ids
//
//	INT002   - The imported program broke a consistency rule; nothing was kept
//	           Action: Fix the listed rows and import the same file again
//
//	NF001    - The requested item does not exist
//	           Action: Refresh and try again
//
//	CONF001  - The change collides with an existing item
//	           Action: Pick a different name or position
//
//	BUSY001  - Another import or edit is running
//	           Action: Please wait a moment and try again
//
// Untagged errors fall back to substring patterns:
//
//	DB001-DB004 - Constraint, connection and deadlock errors from the database
//	REQ001      - Request was cancelled ("context canceled")
//	REQ002      - Request timed out ("context deadline exceeded", "timeout")
//	FILE001     - Document exceeds the size limit ("document too large")
//	RATE001     - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the problems listed with the error for lines and fields
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgValidation = UserMessage{
		Message: "Some values are missing or out of range",
		Action:  "Fix the listed fields and try again",
		Code:    "VAL001",
	}
	msgParse = UserMessage{
		Message: "The document could not be read",
		Action:  "Check quoting, section headers and numeric columns on the listed lines",
		Code:    "PARSE001",
	}
	msgLegacy = UserMessage{
		Message: "This document uses the legacy format",
		Action:  "Export the program again from a current version",
		Code:    "FMT001",
	}
	msgUnknownFormat = UserMessage{
		Message: "This document is not a workout program export",
		Action:  "Import a complete export with [WORKOUT_GROUPS] ... [WORKOUT_SETS] sections",
		Code:    "FMT002",
	}
	msgReference = UserMessage{
		Message: "The document references rows it does not contain",
		Action:  "Add the missing rows or fix the referencing ids",
		Code:    "INT001",
	}
	msgInvariant = UserMessage{
		Message: "The imported program is inconsistent and was not kept",
		Action:  "Fix the listed rows and import the same file again",
		Code:    "INT002",
	}
	msgNotFound = UserMessage{
		Message: "The requested item does not exist",
		Action:  "Refresh and try again",
		Code:    "NF001",
	}
	msgConflict = UserMessage{
		Message: "This change collides with an existing item",
		Action:  "Pick a different name or position",
		Code:    "CONF001",
	}
	msgBusy = UserMessage{
		Message: "Another import or edit is running",
		Action:  "Please wait a moment and try again",
		Code:    "BUSY001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages
// for errors that carry no Kind. The first matching pattern wins.
var errorPatterns = []errorPattern{
	// Database errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Check the document for repeated ids",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent rows are present in the document",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},

	// Request errors
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "document too large",
		msg: UserMessage{
			Message: "Document exceeds the maximum size",
			Action:  "Check that you selected a program export",
			Code:    "FILE001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
// Tagged errors map by kind; anything else is matched against known
// patterns, falling back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if errors.Is(err, ErrImportInProgress) {
		return msgBusy
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			return msgValidation
		case KindParse:
			return msgParse
		case KindFormatUnsupported:
			if errors.Is(err, ErrLegacyFormat) {
				return msgLegacy
			}
			return msgUnknownFormat
		case KindIntegrity:
			if e.Op == "decode.prevalidate" {
				return msgReference
			}
			return msgInvariant
		case KindNotFound:
			return msgNotFound
		case KindConflict:
			return msgConflict
		}
	} else if KindOf(err) == KindValidation {
		return msgValidation
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
