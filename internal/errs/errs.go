// Package errs defines the domain error taxonomy. Handlers map these to HTTP
// status codes at the request boundary; everything else just wraps and returns.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError: missing or malformed required input (400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

// NotFoundError: a referenced entity is absent (404).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

// TranslationError: the rule translator could not produce a usable predicate
// (generation service unreachable, non-success status, empty or unparsable output).
type TranslationError struct {
	Msg string
	Err error
}

func (e *TranslationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *TranslationError) Unwrap() error { return e.Err }

func Translation(err error, format string, args ...any) error {
	return &TranslationError{Msg: fmt.Sprintf(format, args...), Err: err}
}

func IsTranslation(err error) bool {
	var t *TranslationError
	return errors.As(err, &t)
}

// GenerationError: the text-generation service failed on a non-predicate path
// (message personalization, template suggestion).
type GenerationError struct {
	Msg string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

func Generation(err error, format string, args ...any) error {
	return &GenerationError{Msg: fmt.Sprintf(format, args...), Err: err}
}

func IsGeneration(err error) bool {
	var t *GenerationError
	return errors.As(err, &t)
}

// PersistenceError: the document store is unreachable or a write failed (500).
type PersistenceError struct {
	Msg string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(err error, format string, args ...any) error {
	return &PersistenceError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// VendorError: the simulated delivery channel is unreachable. Logged per
// customer, never fatal to a dispatch batch.
type VendorError struct {
	Msg string
	Err error
}

func (e *VendorError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *VendorError) Unwrap() error { return e.Err }

func Vendor(err error, format string, args ...any) error {
	return &VendorError{Msg: fmt.Sprintf(format, args...), Err: err}
}
