// Package usecase implements audit log listing, download and integrity verification.
package usecase

import (
	"context"
	"io"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

// LogStore provides read access to audit log files.
type LogStore interface {
	List(ctx context.Context) ([]auditDomain.LogFile, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *auditDomain.LogFile, error)
	Verify(ctx context.Context, name string) (int, error)
}

// AuditLogUseCase defines audit log operations.
type AuditLogUseCase interface {
	// List returns the audit log files sorted by name.
	List(ctx context.Context) ([]auditDomain.LogFile, error)
	// Open returns a reader over the raw bytes of the named log. The caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, *auditDomain.LogFile, error)
	// Verify returns the first corrupted line number of the named log, or 0 when it is intact.
	Verify(ctx context.Context, name string) (int, error)
}
