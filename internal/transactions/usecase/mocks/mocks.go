// Package mocks provides mock implementations for transaction use case tests.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/vouch/internal/blob"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
)

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *transactionsDomain.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockTransactionRepository) Get(
	ctx context.Context,
	transactionID uuid.UUID,
) (*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transactionsDomain.Transaction), args.Error(1)
}

// ListByOwner mocks the ListByOwner method.
func (m *MockTransactionRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionsDomain.Transaction), args.Error(1)
}

// ListPendingByRecipient mocks the ListPendingByRecipient method.
func (m *MockTransactionRepository) ListPendingByRecipient(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, recipientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionsDomain.Transaction), args.Error(1)
}

// MarkVerified mocks the MarkVerified method.
func (m *MockTransactionRepository) MarkVerified(
	ctx context.Context,
	transactionID uuid.UUID,
	verifiedAt time.Time,
) (bool, error) {
	args := m.Called(ctx, transactionID, verifiedAt)
	return args.Bool(0), args.Error(1)
}

// VideoRefExists mocks the VideoRefExists method.
func (m *MockTransactionRepository) VideoRefExists(ctx context.Context, videoRef string) (bool, error) {
	args := m.Called(ctx, videoRef)
	return args.Bool(0), args.Error(1)
}

// MockKeyPairReader is a mock implementation of KeyPairReader.
type MockKeyPairReader struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockKeyPairReader) Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error) {
	args := m.Called(ctx, keyPairID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.KeyPair), args.Error(1)
}

// MockVideoStore is a mock implementation of VideoStore.
type MockVideoStore struct {
	mock.Mock
}

// Put mocks the Put method.
func (m *MockVideoStore) Put(ctx context.Context, r io.Reader, contentType string) (*blob.Attributes, error) {
	args := m.Called(ctx, r, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Attributes), args.Error(1)
}

// Get mocks the Get method.
func (m *MockVideoStore) Get(ctx context.Context, ref string) (io.ReadCloser, *blob.Attributes, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*blob.Attributes), args.Error(2)
}

// Stat mocks the Stat method.
func (m *MockVideoStore) Stat(ctx context.Context, ref string) (*blob.Attributes, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Attributes), args.Error(1)
}

// List mocks the List method. Attributes configured as the first return value are
// passed to fn in order.
func (m *MockVideoStore) List(ctx context.Context, fn func(attrs *blob.Attributes) error) error {
	args := m.Called(ctx, mock.Anything)
	if items, ok := args.Get(0).([]*blob.Attributes); ok {
		for _, attrs := range items {
			if err := fn(attrs); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockVideoStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockTransactionUseCase is a mock implementation of TransactionUseCase.
type MockTransactionUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockTransactionUseCase) Create(
	ctx context.Context,
	input *transactionsDomain.CreateTransactionInput,
	video io.Reader,
) (*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, input, video)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transactionsDomain.Transaction), args.Error(1)
}

// Get mocks the Get method.
func (m *MockTransactionUseCase) Get(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, transactionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transactionsDomain.Transaction), args.Error(1)
}

// ListOwned mocks the ListOwned method.
func (m *MockTransactionUseCase) ListOwned(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionsDomain.Transaction), args.Error(1)
}

// ListToVerify mocks the ListToVerify method.
func (m *MockTransactionUseCase) ListToVerify(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	args := m.Called(ctx, recipientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transactionsDomain.Transaction), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockTransactionUseCase) Verify(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID, candidatePublicKey string,
) (bool, error) {
	args := m.Called(ctx, transactionID, actorID, candidatePublicKey)
	return args.Bool(0), args.Error(1)
}

// OpenVideo mocks the OpenVideo method.
func (m *MockTransactionUseCase) OpenVideo(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (io.ReadCloser, *blob.Attributes, error) {
	args := m.Called(ctx, transactionID, actorID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*blob.Attributes), args.Error(2)
}

// CleanOrphanVideos mocks the CleanOrphanVideos method.
func (m *MockTransactionUseCase) CleanOrphanVideos(
	ctx context.Context,
	olderThan time.Duration,
	dryRun bool,
) ([]string, error) {
	args := m.Called(ctx, olderThan, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
