// Package mocks provides mock implementations for key pair use case tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
)

// MockKeyPairRepository is a mock implementation of KeyPairRepository.
type MockKeyPairRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockKeyPairRepository) Create(ctx context.Context, keyPair *keysDomain.KeyPair) error {
	args := m.Called(ctx, keyPair)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockKeyPairRepository) Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error) {
	args := m.Called(ctx, keyPairID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.KeyPair), args.Error(1)
}

// ListByOwner mocks the ListByOwner method.
func (m *MockKeyPairRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyPair), args.Error(1)
}

// ListActiveByOwner mocks the ListActiveByOwner method.
func (m *MockKeyPairRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID string,
	now time.Time,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	args := m.Called(ctx, ownerID, now, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyPair), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockKeyPairRepository) Revoke(ctx context.Context, keyPairID uuid.UUID, revokedAt time.Time) (bool, error) {
	args := m.Called(ctx, keyPairID, revokedAt)
	return args.Bool(0), args.Error(1)
}

// ExpireStale mocks the ExpireStale method.
func (m *MockKeyPairRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockKeyGenerator is a mock implementation of KeyGenerator.
type MockKeyGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockKeyGenerator) Generate() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// MockKeyPairUseCase is a mock implementation of KeyPairUseCase.
type MockKeyPairUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockKeyPairUseCase) Generate(
	ctx context.Context,
	ownerID, keyName string,
	validityMonths int,
) (*keysDomain.GeneratedKeyPair, error) {
	args := m.Called(ctx, ownerID, keyName, validityMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.GeneratedKeyPair), args.Error(1)
}

// List mocks the List method.
func (m *MockKeyPairUseCase) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyPair), args.Error(1)
}

// ListActive mocks the ListActive method.
func (m *MockKeyPairUseCase) ListActive(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keysDomain.KeyPair), args.Error(1)
}

// Get mocks the Get method.
func (m *MockKeyPairUseCase) Get(
	ctx context.Context,
	keyPairID uuid.UUID,
	ownerID string,
) (*keysDomain.KeyPair, error) {
	args := m.Called(ctx, keyPairID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.KeyPair), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockKeyPairUseCase) Revoke(ctx context.Context, keyPairID uuid.UUID, ownerID string) error {
	args := m.Called(ctx, keyPairID, ownerID)
	return args.Error(0)
}

// ExpireStale mocks the ExpireStale method.
func (m *MockKeyPairUseCase) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
