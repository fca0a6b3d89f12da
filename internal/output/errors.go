package output

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned for an output format other than csv or xlsx.
var ErrUnknownFormat = errors.New("unknown output format")

// WriteError is a fatal failure to write the output destination.
type WriteError struct {
	// Op is the operation that failed (e.g., "CSVWriter.Write").
	Op string

	// Path is the destination file or sheet.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("output: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a new WriteError.
func NewWriteError(op, path string, err error) *WriteError {
	return &WriteError{Op: op, Path: path, Err: err}
}
