// Package mocks provides mock implementations for audit log tests.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

// MockLogStore is a mock implementation of LogStore.
type MockLogStore struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockLogStore) List(ctx context.Context) ([]auditDomain.LogFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditDomain.LogFile), args.Error(1)
}

// Open mocks the Open method.
func (m *MockLogStore) Open(ctx context.Context, name string) (io.ReadCloser, *auditDomain.LogFile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*auditDomain.LogFile), args.Error(2)
}

// Verify mocks the Verify method.
func (m *MockLogStore) Verify(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase.
type MockAuditLogUseCase struct {
	MockLogStore
}

// MockRecorder is a mock implementation of an audit event recorder.
type MockRecorder struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockRecorder) Record(ctx context.Context, event auditDomain.Event) {
	m.Called(ctx, event)
}
