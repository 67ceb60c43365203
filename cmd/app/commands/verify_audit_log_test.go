package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	auditMocks "github.com/allisson/vouch/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLog(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("single-file-intact", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, "audit.log").Return(0, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, "audit.log", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "audit.log: intact")
		mockUseCase.AssertNotCalled(t, "List", ctx)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("all-files-json", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("List", ctx).Return([]auditDomain.LogFile{{Name: "a.log"}, {Name: "b.log"}}, nil).Once()
		mockUseCase.On("Verify", ctx, "a.log").Return(0, nil).Once()
		mockUseCase.On("Verify", ctx, "b.log").Return(0, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, "", "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, true, result["passed"])
		require.Len(t, result["files"], 2)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("corrupted", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, "audit.log").Return(4, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, "audit.log", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), "CORRUPTED at line 4")
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("Verify", ctx, "missing.log").Return(0, auditDomain.ErrAuditLogNotFound).Once()

		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &bytes.Buffer{}, "missing.log", "text")
		require.ErrorIs(t, err, auditDomain.ErrAuditLogNotFound)
	})

	t.Run("no-files", func(t *testing.T) {
		mockUseCase := &auditMocks.MockAuditLogUseCase{}
		mockUseCase.On("List", ctx).Return([]auditDomain.LogFile{}, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLog(ctx, mockUseCase, logger, &out, "", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No audit logs found")
	})
}
