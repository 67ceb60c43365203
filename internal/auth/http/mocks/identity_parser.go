// Package mocks provides testify mocks for the authentication layer.
package mocks

import (
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
)

// MockIdentityParser is a mock implementation of service.IdentityParser.
type MockIdentityParser struct {
	mock.Mock
}

// Parse mocks the Parse method.
func (m *MockIdentityParser) Parse(rawToken string) (*authDomain.Identity, error) {
	args := m.Called(rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}
