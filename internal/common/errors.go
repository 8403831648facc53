// Package common defines shared sentinel errors and small helpers used across
// ChronoChat layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors: bad input, malformed documents.
	ErrValidation    = errors.New("validation error")
	ErrInvalidBackup = errors.New("invalid backup file format")

	// Security errors. The passcode operation is aborted when returned.
	ErrSecurityViolation = errors.New("security violation: device consistency check failed")
	ErrLocked            = errors.New("too many failed attempts, passcode entry is locked")

	// ErrCancelled marks a user-initiated cancellation (file pick, restore).
	// It is an outcome, not a failure, and is not reported as an error.
	ErrCancelled = errors.New("cancelled")
)
