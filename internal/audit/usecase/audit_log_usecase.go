package usecase

import (
	"context"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

type auditLogUseCase struct {
	store  LogStore
	logger *slog.Logger
}

// NewAuditLogUseCase creates an AuditLogUseCase backed by store.
func NewAuditLogUseCase(store LogStore, logger *slog.Logger) AuditLogUseCase {
	return &auditLogUseCase{store: store, logger: logger}
}

func (a *auditLogUseCase) List(ctx context.Context) ([]auditDomain.LogFile, error) {
	return a.store.List(ctx)
}

func (a *auditLogUseCase) Open(ctx context.Context, name string) (io.ReadCloser, *auditDomain.LogFile, error) {
	return a.store.Open(ctx, name)
}

func (a *auditLogUseCase) Verify(ctx context.Context, name string) (int, error) {
	line, err := a.store.Verify(ctx, name)
	if err != nil {
		return 0, err
	}

	if line > 0 {
		a.logger.Warn("audit log corruption detected",
			slog.String("file", name),
			slog.Int("line", line),
		)
	}
	return line, nil
}
