package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/vouch/internal/metrics"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
	usecaseMocks "github.com/allisson/vouch/internal/transactions/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "transactions", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "transactions", operation, mock.AnythingOfType("time.Duration"), status).
		Return().Once()
}

func TestTransactionUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Create_Success", func(t *testing.T) {
		next := &usecaseMocks.MockTransactionUseCase{}
		m := &mockBusinessMetrics{}
		input := &transactionsDomain.CreateTransactionInput{OwnerID: "owner-1"}
		video := bytes.NewReader([]byte("video"))
		transaction := &transactionsDomain.Transaction{ID: uuid.Must(uuid.NewV7())}

		next.On("Create", ctx, input, video).Return(transaction, nil).Once()
		expectMetrics(ctx, m, "transaction_create", "success")

		got, err := NewTransactionUseCaseWithMetrics(next, m).Create(ctx, input, video)

		assert.NoError(t, err)
		assert.Equal(t, transaction, got)
		m.AssertExpectations(t)
	})

	t.Run("Verify_MismatchIsInvalid", func(t *testing.T) {
		next := &usecaseMocks.MockTransactionUseCase{}
		m := &mockBusinessMetrics{}
		transactionID := uuid.Must(uuid.NewV7())

		next.On("Verify", ctx, transactionID, "recipient-1", "pem").Return(false, nil).Once()
		expectMetrics(ctx, m, "transaction_verify", "invalid")

		valid, err := NewTransactionUseCaseWithMetrics(next, m).Verify(ctx, transactionID, "recipient-1", "pem")

		assert.NoError(t, err)
		assert.False(t, valid)
		m.AssertExpectations(t)
	})

	t.Run("Verify_Error", func(t *testing.T) {
		next := &usecaseMocks.MockTransactionUseCase{}
		m := &mockBusinessMetrics{}
		transactionID := uuid.Must(uuid.NewV7())

		next.On("Verify", ctx, transactionID, "recipient-1", "pem").Return(false, errors.New("boom")).Once()
		expectMetrics(ctx, m, "transaction_verify", "error")

		_, err := NewTransactionUseCaseWithMetrics(next, m).Verify(ctx, transactionID, "recipient-1", "pem")

		assert.Error(t, err)
		m.AssertExpectations(t)
	})

	t.Run("ListToVerify_Success", func(t *testing.T) {
		next := &usecaseMocks.MockTransactionUseCase{}
		m := &mockBusinessMetrics{}

		next.On("ListToVerify", ctx, "recipient-1", 0, 50).Return([]*transactionsDomain.Transaction{}, nil).Once()
		expectMetrics(ctx, m, "transaction_list_to_verify", "success")

		_, err := NewTransactionUseCaseWithMetrics(next, m).ListToVerify(ctx, "recipient-1", 0, 50)

		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("CleanOrphanVideos_Error", func(t *testing.T) {
		next := &usecaseMocks.MockTransactionUseCase{}
		m := &mockBusinessMetrics{}

		next.On("CleanOrphanVideos", ctx, time.Hour, true).Return(nil, errors.New("boom")).Once()
		expectMetrics(ctx, m, "transaction_clean_orphan_videos", "error")

		_, err := NewTransactionUseCaseWithMetrics(next, m).CleanOrphanVideos(ctx, time.Hour, true)

		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}
