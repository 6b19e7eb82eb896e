// Package core provides the business logic for the workout program store.
//
// This package is the heart of the application, containing all domain logic
// independent of any UI, transport or storage engine. It can be used by web
// handlers, the CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Model: workout groups, exercises, days, day/group tags and sets, built
//     through validated constructors (see [NewWorkoutGroup] and friends).
//   - Repository: the storage port ([Repository]) implemented by the memory
//     and postgres stores.
//   - Codec: the sectioned CSV document that round-trips the whole program
//     with its ids ([Encode], [Decoder]).
//   - Summary: per-day and cross-day statistics derived from the set table.
//   - Service: the entry point used by the web server and the CLI.
//
// # Sectioned CSV
//
// A document is a sequence of sections, each a bracketed name followed by a
// headered CSV table and a blank line:
//
//	[WORKOUT_GROUPS]
//	id,name,notes
//	1,Chest,
//
//	[EXERCISES]
//	id,workout_group_id,name,notes
//	1,1,Bench,
//
// Sections are registered in dependency order (see [Sections]). Encoding walks
// that order and sorts rows by id so identical state yields identical text.
// Decoding is a destructive replace:
//
//  1. Parse the document into sections and rows
//  2. Pre-validate columns, values and references inside the document
//  3. Clear the repository and reset id sequences
//  4. Insert every section in dependency order, keeping the document's ids
//  5. Post-validate the repository and clear it again on failure
//
// # Error Handling
//
// Every failure is an [*Error] tagged with a [Kind]. [MapError] turns errors
// into user-facing messages with a support code:
//
//   - VAL001: Validation errors (missing or out-of-range values)
//   - PARSE001: Malformed documents
//   - FMT001-FMT002: Legacy or unrecognized document formats
//   - INT001-INT002: Broken references and invariant violations
//   - NF001, CONF001: Missing ids and uniqueness conflicts
//   - BUSY001: Another import or edit holds the import lease
//
// # Audit Trail
//
// Imports, exports, backups and resets are recorded in an in-memory audit
// trail with severity levels:
//
//   - Low: Exports
//   - Medium: Program edits
//   - High: Backups and restores
//   - Critical: Imports and resets
package core
