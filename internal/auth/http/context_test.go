package http

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
)

func TestIdentityContext(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	assert.False(t, ok)

	identity := &authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}
	got, ok := GetIdentity(WithIdentity(context.Background(), identity))
	require.True(t, ok)
	assert.Same(t, identity, got)

	_, ok = GetIdentity(WithIdentity(context.Background(), nil))
	assert.False(t, ok)
}
