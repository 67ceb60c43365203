// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the entity state precludes the requested action
	// (e.g., revoking an already revoked key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks a trusted identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated identity is not entitled to act on the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrIO indicates a storage or transport failure. Operations failing with ErrIO
	// were not applied and may be retried.
	ErrIO = errors.New("io failure")

	// ErrCrypto indicates key or signature material that cannot be parsed.
	// A well-formed signature that does not match is not an error.
	ErrCrypto = errors.New("invalid key material")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapIO marks err as an ErrIO failure while keeping err in the chain.
func WrapIO(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrIO, err)
}

// WrapIOIfUnknown returns err unchanged when it already carries one of the
// sentinels above and marks it as ErrIO otherwise.
func WrapIOIfUnknown(err error, message string) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrIO, ErrCrypto,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return WrapIO(err, message)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
