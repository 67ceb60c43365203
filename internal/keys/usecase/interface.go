// Package usecase implements key pair lifecycle operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	outboxDomain "github.com/allisson/vouch/internal/outbox/domain"
)

// KeyPairRepository defines the interface for key pair persistence.
type KeyPairRepository interface {
	Create(ctx context.Context, keyPair *keysDomain.KeyPair) error
	Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*keysDomain.KeyPair, error)
	// ListActiveByOwner returns stored ACTIVE keys with expires_at after now.
	ListActiveByOwner(
		ctx context.Context,
		ownerID string,
		now time.Time,
		offset, limit int,
	) ([]*keysDomain.KeyPair, error)
	// Revoke moves an ACTIVE, unexpired key to REVOKED. It reports false when the
	// row was not in that state, so that only one concurrent caller wins.
	Revoke(ctx context.Context, keyPairID uuid.UUID, revokedAt time.Time) (bool, error)
	// ExpireStale rewrites stored ACTIVE keys with expires_at <= now to EXPIRED.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// AuditRecorder records audit events. Failures never propagate to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event)
}

// EventPublisher writes outbox events, joining the transaction carried by ctx.
type EventPublisher interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// KeyPairUseCase defines key pair lifecycle operations.
type KeyPairUseCase interface {
	// Generate creates a key pair for ownerID. The private key is only present in the result.
	Generate(
		ctx context.Context,
		ownerID, keyName string,
		validityMonths int,
	) (*keysDomain.GeneratedKeyPair, error)
	// List returns every key of ownerID with its status evaluated at read time.
	List(ctx context.Context, ownerID string, offset, limit int) ([]*keysDomain.KeyPair, error)
	// ListActive returns the keys of ownerID that are ACTIVE and not yet expired.
	ListActive(ctx context.Context, ownerID string, offset, limit int) ([]*keysDomain.KeyPair, error)
	// Get returns a key owned by ownerID.
	Get(ctx context.Context, keyPairID uuid.UUID, ownerID string) (*keysDomain.KeyPair, error)
	// Revoke transitions an ACTIVE key owned by ownerID to REVOKED.
	Revoke(ctx context.Context, keyPairID uuid.UUID, ownerID string) error
	// ExpireStale persists the EXPIRED status of keys past their expiry date.
	ExpireStale(ctx context.Context) (int64, error)
}
