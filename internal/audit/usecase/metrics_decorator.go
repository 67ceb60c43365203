package usecase

import (
	"context"
	"io"
	"time"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	"github.com/allisson/vouch/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditLogUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, a.metrics, "audit", operation, start, metrics.StatusOf(err))
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(ctx context.Context) ([]auditDomain.LogFile, error) {
	start := time.Now()
	files, err := a.next.List(ctx)
	a.record(ctx, "audit_log_list", start, err)
	return files, err
}

// Open records metrics for audit log downloads.
func (a *auditLogUseCaseWithMetrics) Open(
	ctx context.Context,
	name string,
) (io.ReadCloser, *auditDomain.LogFile, error) {
	start := time.Now()
	rc, info, err := a.next.Open(ctx, name)
	a.record(ctx, "audit_log_download", start, err)
	return rc, info, err
}

// Verify records metrics for audit log verification. A corrupted log is a
// successful verification with status "corrupted".
func (a *auditLogUseCaseWithMetrics) Verify(ctx context.Context, name string) (int, error) {
	start := time.Now()
	line, err := a.next.Verify(ctx, name)

	status := metrics.StatusOf(err)
	if err == nil && line > 0 {
		status = metrics.StatusCorrupted
	}
	metrics.Observe(ctx, a.metrics, "audit", "audit_log_verify", start, status)

	return line, err
}
