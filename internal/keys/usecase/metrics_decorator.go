package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	"github.com/allisson/vouch/internal/metrics"
)

// keyPairUseCaseWithMetrics decorates KeyPairUseCase with metrics instrumentation.
type keyPairUseCaseWithMetrics struct {
	next    KeyPairUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyPairUseCaseWithMetrics wraps a KeyPairUseCase with metrics recording.
func NewKeyPairUseCaseWithMetrics(useCase KeyPairUseCase, m metrics.BusinessMetrics) KeyPairUseCase {
	return &keyPairUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyPairUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, k.metrics, "keys", operation, start, metrics.StatusOf(err))
}

// Generate records metrics for key pair generation.
func (k *keyPairUseCaseWithMetrics) Generate(
	ctx context.Context,
	ownerID, keyName string,
	validityMonths int,
) (*keysDomain.GeneratedKeyPair, error) {
	start := time.Now()
	generated, err := k.next.Generate(ctx, ownerID, keyName, validityMonths)
	k.record(ctx, "key_pair_generate", start, err)
	return generated, err
}

// List records metrics for key pair listing.
func (k *keyPairUseCaseWithMetrics) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	start := time.Now()
	keyPairs, err := k.next.List(ctx, ownerID, offset, limit)
	k.record(ctx, "key_pair_list", start, err)
	return keyPairs, err
}

// ListActive records metrics for active key pair listing.
func (k *keyPairUseCaseWithMetrics) ListActive(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	start := time.Now()
	keyPairs, err := k.next.ListActive(ctx, ownerID, offset, limit)
	k.record(ctx, "key_pair_list_active", start, err)
	return keyPairs, err
}

// Get records metrics for key pair lookups.
func (k *keyPairUseCaseWithMetrics) Get(
	ctx context.Context,
	keyPairID uuid.UUID,
	ownerID string,
) (*keysDomain.KeyPair, error) {
	start := time.Now()
	keyPair, err := k.next.Get(ctx, keyPairID, ownerID)
	k.record(ctx, "key_pair_get", start, err)
	return keyPair, err
}

// Revoke records metrics for key pair revocation.
func (k *keyPairUseCaseWithMetrics) Revoke(ctx context.Context, keyPairID uuid.UUID, ownerID string) error {
	start := time.Now()
	err := k.next.Revoke(ctx, keyPairID, ownerID)
	k.record(ctx, "key_pair_revoke", start, err)
	return err
}

// ExpireStale records metrics for the expiry batch.
func (k *keyPairUseCaseWithMetrics) ExpireStale(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := k.next.ExpireStale(ctx)
	k.record(ctx, "key_pair_expire_stale", start, err)
	return count, err
}
