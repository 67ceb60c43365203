package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/vouch/internal/errors"
)

func TestIdentity_HasRole(t *testing.T) {
	admin := &Identity{UserID: "u-1", Role: RoleAdmin}
	user := &Identity{UserID: "u-2", Role: RoleUser}

	assert.True(t, admin.HasRole(RoleAdmin))
	assert.False(t, user.HasRole(RoleAdmin))

	var missing *Identity
	assert.False(t, missing.HasRole(RoleAdmin))
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidToken, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ErrMissingSubject, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ErrRoleRequired, apperrors.ErrForbidden)
}
