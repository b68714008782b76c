// Package errs defines the error taxonomy shared by the mapping pipeline.
//
// Every failure the pipeline can report is one of the sentinel kinds below.
// Callers match kinds with errors.Is; the *Error wrapper carries the failing
// operation and entity (table or Go type) for log lines and messages.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// Storage / construction.
	ErrMissingDatabasePath  = errors.New("ormlite: database path must not be empty")
	ErrDatabaseFileNotFound = errors.New("ormlite: database file does not exist")
	ErrUnknownStorage       = errors.New("ormlite: unknown storage kind")
	ErrInvalidDSN           = errors.New("ormlite: invalid data source name")
	ErrDisabled             = errors.New("ormlite: engine disabled")

	// Schema extraction.
	ErrMissingTableMetadata       = errors.New("ormlite: missing table metadata")
	ErrMissingConstructorMetadata = errors.New("ormlite: missing row constructor metadata")
	ErrNoColumns                  = errors.New("ormlite: table has no mapped columns")
	ErrArityMismatch              = errors.New("ormlite: row constructor arity does not match column count")

	// SQL generation.
	ErrInvalidDefault = errors.New("ormlite: invalid column default")

	// Execution.
	ErrSQLExecution  = errors.New("ormlite: sql execution failed")
	ErrParameterBind = errors.New("ormlite: parameter binding failed")
	ErrRowHydration  = errors.New("ormlite: row hydration failed")
)

// Error wraps a failure with the operation and entity it happened in.
type Error struct {
	Kind   error  // one of the sentinel kinds
	Op     string // e.g. "extract", "select", "exec", "bind"
	Entity string // table name or Go type name; may be empty
	Err    error  // underlying cause; may be nil
}

// Error returns the error string.
func (e *Error) Error() string {
	var msg string
	switch {
	case e.Entity != "":
		msg = fmt.Sprintf("%v (%s %s)", e.Kind, e.Op, e.Entity)
	case e.Op != "":
		msg = fmt.Sprintf("%v (%s)", e.Kind, e.Op)
	default:
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error of the given kind.
func New(kind error, op, entity string, err error) *Error {
	return &Error{Kind: kind, Op: op, Entity: entity, Err: err}
}

// Newf returns an *Error of the given kind with a formatted cause.
func Newf(kind error, op, entity, format string, a ...any) *Error {
	return &Error{Kind: kind, Op: op, Entity: entity, Err: fmt.Errorf(format, a...)}
}

// IsMetadata reports whether err is a schema metadata failure. The lenient
// API treats these as per-call aborts.
func IsMetadata(err error) bool {
	return errors.Is(err, ErrMissingTableMetadata) ||
		errors.Is(err, ErrMissingConstructorMetadata) ||
		errors.Is(err, ErrNoColumns) ||
		errors.Is(err, ErrArityMismatch)
}

// IsStorage reports whether err stems from storage validation.
func IsStorage(err error) bool {
	return errors.Is(err, ErrMissingDatabasePath) ||
		errors.Is(err, ErrDatabaseFileNotFound) ||
		errors.Is(err, ErrUnknownStorage) ||
		errors.Is(err, ErrInvalidDSN)
}
