package internalerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoRowsAccepted = errors.New("no rows accepted")
)

// UnreadableFileError reports a file whose bytes could not be opened or
// decoded into text. It is fatal for that file.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// SchemaValidationError reports required columns missing from a parsed table.
// It names every missing column so the caller can diagnose without re-running.
type SchemaValidationError struct {
	Path     string
	Category string
	Missing  []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for %s file %s: missing required columns: %s",
		e.Category, e.Path, strings.Join(e.Missing, ", "))
}

// UnknownCampusError reports a campus name that is not in the fixed
// reference set.
type UnknownCampusError struct {
	Name string
}

func (e *UnknownCampusError) Error() string {
	return fmt.Sprintf("unknown campus: %q", e.Name)
}

// BulkWriteError reports a failed bulk insert. The whole batch for the file
// is rolled back; the file stays unprocessed in the ledger.
type BulkWriteError struct {
	Path string
	Err  error
}

func (e *BulkWriteError) Error() string {
	return fmt.Sprintf("bulk write failed for %s: %v", e.Path, e.Err)
}

func (e *BulkWriteError) Unwrap() error { return e.Err }
