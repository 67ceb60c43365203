package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	"github.com/allisson/vouch/internal/audit/usecase/mocks"
	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/metrics"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAuditLogUseCase_List(t *testing.T) {
	ctx := context.Background()
	store := &mocks.MockLogStore{}
	files := []auditDomain.LogFile{{Name: "a.log"}, {Name: "b.log"}}
	store.On("List", ctx).Return(files, nil).Once()

	got, err := NewAuditLogUseCase(store, newTestLogger()).List(ctx)

	require.NoError(t, err)
	assert.Equal(t, files, got)
	store.AssertExpectations(t)
}

func TestAuditLogUseCase_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := &mocks.MockLogStore{}
		rc := io.NopCloser(strings.NewReader("1| line"))
		store.On("Open", ctx, "audit.log").Return(rc, &auditDomain.LogFile{Name: "audit.log"}, nil).Once()

		got, info, err := NewAuditLogUseCase(store, newTestLogger()).Open(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, "audit.log", info.Name)
		data, _ := io.ReadAll(got)
		assert.Equal(t, "1| line", string(data))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		store := &mocks.MockLogStore{}
		store.On("Open", ctx, "missing.log").Return(nil, nil, auditDomain.ErrAuditLogNotFound).Once()

		_, _, err := NewAuditLogUseCase(store, newTestLogger()).Open(ctx, "missing.log")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestAuditLogUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Clean", func(t *testing.T) {
		store := &mocks.MockLogStore{}
		store.On("Verify", ctx, "audit.log").Return(0, nil).Once()

		line, err := NewAuditLogUseCase(store, newTestLogger()).Verify(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, 0, line)
	})

	t.Run("Success_Corrupted", func(t *testing.T) {
		store := &mocks.MockLogStore{}
		store.On("Verify", ctx, "audit.log").Return(7, nil).Once()

		line, err := NewAuditLogUseCase(store, newTestLogger()).Verify(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, 7, line)
	})

	t.Run("Error_IO", func(t *testing.T) {
		store := &mocks.MockLogStore{}
		store.On("Verify", ctx, "audit.log").Return(0, apperrors.WrapIO(assert.AnError, "read")).Once()

		_, err := NewAuditLogUseCase(store, newTestLogger()).Verify(ctx, "audit.log")
		assert.ErrorIs(t, err, apperrors.ErrIO)
	})
}

func TestAuditLogUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	store := &mocks.MockLogStore{}
	store.On("Verify", ctx, "audit.log").Return(3, nil).Once()
	store.On("List", ctx).Return(nil, apperrors.WrapIO(assert.AnError, "read")).Once()

	uc := NewAuditLogUseCaseWithMetrics(NewAuditLogUseCase(store, newTestLogger()), metrics.NewNoOpBusinessMetrics())

	line, err := uc.Verify(ctx, "audit.log")
	require.NoError(t, err)
	assert.Equal(t, 3, line)

	_, err = uc.List(ctx)
	assert.ErrorIs(t, err, apperrors.ErrIO)
	store.AssertExpectations(t)
}
