package domain

import (
	"github.com/allisson/vouch/internal/errors"
)

var (
	// ErrTransactionNotFound indicates the transaction does not exist.
	ErrTransactionNotFound = errors.Wrap(errors.ErrNotFound, "transaction not found")

	// ErrTransactionNotVisible indicates the caller is neither the owner nor the recipient.
	ErrTransactionNotVisible = errors.Wrap(errors.ErrForbidden, "transaction belongs to other parties")

	// ErrNotRecipient indicates a verification attempted by someone other than the recipient.
	ErrNotRecipient = errors.Wrap(errors.ErrForbidden, "only the recipient can verify the transaction")

	// ErrSelfTransfer indicates a transaction whose recipient is its owner.
	ErrSelfTransfer = errors.Wrap(errors.ErrInvalidInput, "recipient must differ from owner")

	// ErrSigningKeyNotOwned indicates the signing key belongs to another owner.
	ErrSigningKeyNotOwned = errors.Wrap(errors.ErrForbidden, "signing key belongs to another owner")

	// ErrSigningKeyUnusable indicates the signing key is absent, revoked or expired.
	ErrSigningKeyUnusable = errors.Wrap(errors.ErrInvalidInput, "signing key is not active")

	// ErrPublicKeyMismatch indicates a publicKeySnapshot that differs from the stored key.
	ErrPublicKeyMismatch = errors.Wrap(errors.ErrInvalidInput, "public key does not match signing key")

	// ErrMissingSignature indicates a create request without a signature.
	ErrMissingSignature = errors.Wrap(errors.ErrInvalidInput, "signature is required")
)
