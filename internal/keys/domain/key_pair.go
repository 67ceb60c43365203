// Package domain defines key pair models and lifecycle rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyStatus is the lifecycle state of a key pair.
type KeyStatus string

const (
	// KeyStatusActive keys can be used to sign new transactions.
	KeyStatusActive KeyStatus = "active"
	// KeyStatusRevoked keys were explicitly revoked by their owner. Terminal.
	KeyStatusRevoked KeyStatus = "revoked"
	// KeyStatusExpired keys passed their expiresAt. Terminal.
	KeyStatusExpired KeyStatus = "expired"
)

// KeyPair is the public half of an asymmetric key pair plus its lifecycle metadata.
// The private half is never stored.
type KeyPair struct {
	ID        uuid.UUID
	OwnerID   string
	KeyName   string
	PublicKey string
	Status    KeyStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// EffectiveStatus returns the status as observed at now. A stored ACTIVE key
// whose expiresAt is not after now reads as EXPIRED.
func (k *KeyPair) EffectiveStatus(now time.Time) KeyStatus {
	if k.Status == KeyStatusActive && !k.ExpiresAt.After(now) {
		return KeyStatusExpired
	}
	return k.Status
}

// IsActive reports whether the key can sign at now.
func (k *KeyPair) IsActive(now time.Time) bool {
	return k.EffectiveStatus(now) == KeyStatusActive
}

// ExpiresAfter returns from advanced by the given number of calendar months.
func ExpiresAfter(from time.Time, validityMonths int) time.Time {
	return from.AddDate(0, validityMonths, 0)
}

// GeneratedKeyPair is returned once when a key pair is created. PrivateKeyPEM
// must be handed to the caller and then discarded.
type GeneratedKeyPair struct {
	KeyPair       *KeyPair
	PrivateKeyPEM string
}
