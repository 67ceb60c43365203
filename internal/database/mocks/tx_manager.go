// Package mocks provides mock implementations of database abstractions.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a TxManager that runs fn inline without a real transaction.
// Calls are recorded so tests can assert on them; an error configured with
// On("WithTx", ...).Return(err) is returned before fn runs.
type MockTxManager struct {
	mock.Mock
}

// NewMockTxManager creates a MockTxManager that passes through to fn by default.
func NewMockTxManager() *MockTxManager {
	m := &MockTxManager{}
	m.On("WithTx", mock.Anything).Return(nil).Maybe()
	return m
}

// WithTx records the call and executes fn with ctx.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
