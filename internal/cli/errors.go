// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Corpus errors
	ErrCorpusNotFound = "CORPUS_NOT_FOUND"
	ErrConfigInvalid  = "CONFIG_INVALID"

	// Snapshot errors
	ErrMapInvalid    = "MAP_INVALID"
	ErrDatabaseError = "DATABASE_ERROR"

	// File errors
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Layout errors
	ErrLayoutSpecInvalid = "LAYOUT_SPEC_INVALID"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
