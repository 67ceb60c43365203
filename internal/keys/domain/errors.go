package domain

import (
	"github.com/allisson/vouch/internal/errors"
)

// Key pair error definitions.
var (
	// ErrKeyPairNotFound indicates the key pair does not exist.
	ErrKeyPairNotFound = errors.Wrap(errors.ErrNotFound, "key pair not found")

	// ErrKeyPairNotOwned indicates the key pair belongs to another owner.
	ErrKeyPairNotOwned = errors.Wrap(errors.ErrForbidden, "key pair belongs to another owner")

	// ErrKeyPairNotActive indicates the key pair is revoked or expired.
	ErrKeyPairNotActive = errors.Wrap(errors.ErrConflict, "key pair is not active")
)
