package domain

import (
	"github.com/allisson/vouch/internal/errors"
)

var (
	// ErrInvalidToken indicates the bearer token is missing, malformed, expired or badly signed.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid bearer token")

	// ErrMissingSubject indicates a well-signed token without a "sub" claim.
	ErrMissingSubject = errors.Wrap(errors.ErrUnauthorized, "token has no subject")

	// ErrRoleRequired indicates the identity lacks the role an endpoint requires.
	ErrRoleRequired = errors.Wrap(errors.ErrForbidden, "insufficient role")
)
