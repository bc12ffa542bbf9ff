package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMapping is returned when a header mapping name is not registered.
	ErrUnknownMapping = errors.New("unknown header mapping")
	// ErrNoUsableMapping is returned when no registered mapping matches a header
	// row and there is no default mapping to fall back to.
	ErrNoUsableMapping = errors.New("no usable header mapping")
	// ErrNoRecords is returned when a report is requested on an empty store.
	ErrNoRecords = errors.New("no records in database; cannot run report")
)

// ParseError reports malformed statement structure. It aborts ingestion of the file.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a row that fails canonical field checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps any failure coming from the storage service together
// with the statement that caused it.
type StorageError struct {
	Statement string
	Err       error
}

const maxStatementInError = 100

func (e *StorageError) Error() string {
	stmt := e.Statement
	if len(stmt) > maxStatementInError {
		stmt = stmt[:maxStatementInError]
	}
	return fmt.Sprintf("storage: %s: %v", stmt, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
