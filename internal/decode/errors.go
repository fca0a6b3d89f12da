package decode

import (
	"errors"
	"fmt"
)

// Common decoding errors
var (
	// ErrEmptyDocument is returned when the input has no bytes, or only a byte-order mark.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrBinaryContent is returned when the input contains NUL bytes outside a UTF-16 stream,
	// which means it is not a text document at all.
	ErrBinaryContent = errors.New("document contains binary content")

	// ErrDocumentTooLarge is returned when the input exceeds the configured size limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrNoEncoding is returned when no candidate encoding accepted the input.
	ErrNoEncoding = errors.New("no encoding could decode the document")
)

// DecodingError wraps a decode failure with the operation and input size.
type DecodingError struct {
	// Op is the operation that failed (e.g., "Decode").
	Op string

	// Err is the underlying error.
	Err error

	// Size is the input size in bytes.
	Size int
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode: %s failed (%d bytes): %v", e.Op, e.Size, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DecodingError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *DecodingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDecodingError creates a new DecodingError.
func NewDecodingError(op string, err error, size int) *DecodingError {
	return &DecodingError{
		Op:   op,
		Err:  err,
		Size: size,
	}
}
