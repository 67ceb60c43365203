package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	"github.com/allisson/vouch/internal/database"
	apperrors "github.com/allisson/vouch/internal/errors"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	keysService "github.com/allisson/vouch/internal/keys/service"
	outboxDomain "github.com/allisson/vouch/internal/outbox/domain"
	customValidation "github.com/allisson/vouch/internal/validation"
)

const auditService = "keys"

// keyPairUseCase implements KeyPairUseCase.
type keyPairUseCase struct {
	txManager    database.TxManager
	keyPairRepo  KeyPairRepository
	keyGenerator keysService.KeyGenerator
	events       EventPublisher
	audit        AuditRecorder
	now          func() time.Time
}

// NewKeyPairUseCase creates a new KeyPairUseCase.
func NewKeyPairUseCase(
	txManager database.TxManager,
	keyPairRepo KeyPairRepository,
	keyGenerator keysService.KeyGenerator,
	events EventPublisher,
	audit AuditRecorder,
) KeyPairUseCase {
	return &keyPairUseCase{
		txManager:    txManager,
		keyPairRepo:  keyPairRepo,
		keyGenerator: keyGenerator,
		events:       events,
		audit:        audit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type generateInput struct {
	KeyName        string
	ValidityMonths int
}

func (i generateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.KeyName,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, keysDomain.MaxKeyNameLength),
		),
		validation.Field(&i.ValidityMonths,
			validation.Required,
			customValidation.ValidityMonths,
		),
	)
}

// Generate creates a key pair and persists only its public half.
func (k *keyPairUseCase) Generate(
	ctx context.Context,
	ownerID, keyName string,
	validityMonths int,
) (*keysDomain.GeneratedKeyPair, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := (generateInput{KeyName: keyName, ValidityMonths: validityMonths}).Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	publicPEM, privatePEM, err := k.keyGenerator.Generate()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate key pair")
	}

	now := k.now()
	keyPair := &keysDomain.KeyPair{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		KeyName:   keyName,
		PublicKey: publicPEM,
		Status:    keysDomain.KeyStatusActive,
		ExpiresAt: keysDomain.ExpiresAfter(now, validityMonths),
		CreatedAt: now,
	}

	if err := k.keyPairRepo.Create(ctx, keyPair); err != nil {
		k.record(ctx, ownerID, "key_pair_generate", "keyName="+keyName, auditDomain.EventStatusFailed)
		return nil, apperrors.WrapIO(err, "failed to persist key pair")
	}

	k.record(ctx, ownerID, "key_pair_generate", "keyId="+keyPair.ID.String(), auditDomain.EventStatusSuccess)

	return &keysDomain.GeneratedKeyPair{KeyPair: keyPair, PrivateKeyPEM: privatePEM}, nil
}

// List returns all keys of ownerID with effective statuses.
func (k *keyPairUseCase) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	keyPairs, err := k.keyPairRepo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, apperrors.WrapIO(err, "failed to list key pairs")
	}

	now := k.now()
	for _, keyPair := range keyPairs {
		keyPair.Status = keyPair.EffectiveStatus(now)
	}
	return keyPairs, nil
}

// ListActive returns the usable keys of ownerID.
func (k *keyPairUseCase) ListActive(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	now := k.now()
	keyPairs, err := k.keyPairRepo.ListActiveByOwner(ctx, ownerID, now, offset, limit)
	if err != nil {
		return nil, apperrors.WrapIO(err, "failed to list active key pairs")
	}

	active := make([]*keysDomain.KeyPair, 0, len(keyPairs))
	for _, keyPair := range keyPairs {
		if keyPair.IsActive(now) {
			active = append(active, keyPair)
		}
	}
	return active, nil
}

// Get returns a key pair owned by ownerID.
func (k *keyPairUseCase) Get(
	ctx context.Context,
	keyPairID uuid.UUID,
	ownerID string,
) (*keysDomain.KeyPair, error) {
	keyPair, err := k.load(ctx, keyPairID, ownerID)
	if err != nil {
		return nil, err
	}
	keyPair.Status = keyPair.EffectiveStatus(k.now())
	return keyPair, nil
}

// Revoke moves the key to REVOKED and emits key_pair.revoked in the same transaction.
// Exactly one of several concurrent calls succeeds; the others observe ErrKeyPairNotActive.
func (k *keyPairUseCase) Revoke(ctx context.Context, keyPairID uuid.UUID, ownerID string) error {
	details := "keyId=" + keyPairID.String()

	err := k.txManager.WithTx(ctx, func(ctx context.Context) error {
		keyPair, err := k.load(ctx, keyPairID, ownerID)
		if err != nil {
			return err
		}

		now := k.now()
		if !keyPair.IsActive(now) {
			return keysDomain.ErrKeyPairNotActive
		}

		revoked, err := k.keyPairRepo.Revoke(ctx, keyPairID, now)
		if err != nil {
			return err
		}
		if !revoked {
			return keysDomain.ErrKeyPairNotActive
		}

		event, err := outboxDomain.NewOutboxEvent(outboxDomain.EventKeyPairRevoked, outboxDomain.KeyPairEventPayload{
			KeyPairID: keyPairID.String(),
			OwnerID:   ownerID,
		}, now)
		if err != nil {
			return err
		}
		return k.events.Create(ctx, event)
	})
	if err != nil {
		k.record(ctx, ownerID, "key_pair_revoke", details, auditDomain.EventStatusFailed)
		return apperrors.WrapIOIfUnknown(err, "failed to revoke key pair")
	}

	k.record(ctx, ownerID, "key_pair_revoke", details, auditDomain.EventStatusSuccess)
	return nil
}

// ExpireStale persists EXPIRED on keys whose expiry date has passed.
func (k *keyPairUseCase) ExpireStale(ctx context.Context) (int64, error) {
	count, err := k.keyPairRepo.ExpireStale(ctx, k.now())
	if err != nil {
		return 0, apperrors.WrapIO(err, "failed to expire stale key pairs")
	}
	if count > 0 {
		k.record(ctx, "system", "key_pair_expire", fmt.Sprintf("count=%d", count), auditDomain.EventStatusSuccess)
	}
	return count, nil
}

// load fetches a key and checks ownership.
func (k *keyPairUseCase) load(
	ctx context.Context,
	keyPairID uuid.UUID,
	ownerID string,
) (*keysDomain.KeyPair, error) {
	keyPair, err := k.keyPairRepo.Get(ctx, keyPairID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.WrapIO(err, "failed to load key pair")
	}
	if keyPair.OwnerID != ownerID {
		return nil, keysDomain.ErrKeyPairNotOwned
	}
	return keyPair, nil
}

func (k *keyPairUseCase) record(
	ctx context.Context,
	actor, action, details string,
	status auditDomain.EventStatus,
) {
	k.audit.Record(ctx, auditDomain.Event{
		Actor:   actor,
		Service: auditService,
		Action:  action,
		Details: details,
		Status:  status,
	})
}
