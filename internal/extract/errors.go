package extract

import (
	"errors"
	"fmt"
)

// ErrExtractorPanic marks a failure recovered from a panicking extractor.
var ErrExtractorPanic = errors.New("extractor panicked")

// ExtractorError is a field-level failure. The record keeps the field empty and
// lists the error as "<field>: <message>".
type ExtractorError struct {
	// Field is the output field the extractor fills (e.g., "dates", "total").
	Field string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExtractorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractorError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractorError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractorError wraps err for field unless it already is an ExtractorError.
func WrapExtractorError(field string, err error) error {
	if err == nil {
		return nil
	}

	var extractErr *ExtractorError
	if errors.As(err, &extractErr) {
		return err
	}

	return &ExtractorError{Field: field, Err: err}
}
