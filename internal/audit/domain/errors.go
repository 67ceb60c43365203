package domain

import (
	"github.com/allisson/vouch/internal/errors"
)

// Audit log error definitions.
var (
	// ErrAuditLogNotFound indicates the named audit log file does not exist.
	ErrAuditLogNotFound = errors.Wrap(errors.ErrNotFound, "audit log not found")

	// ErrInvalidAuditLogName indicates a file name that is empty or escapes the audit directory.
	ErrInvalidAuditLogName = errors.Wrap(errors.ErrInvalidInput, "invalid audit log name")
)
