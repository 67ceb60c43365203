package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	"github.com/allisson/vouch/internal/blob"
	"github.com/allisson/vouch/internal/database"
	apperrors "github.com/allisson/vouch/internal/errors"
	outboxDomain "github.com/allisson/vouch/internal/outbox/domain"
	"github.com/allisson/vouch/internal/signature"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
	customValidation "github.com/allisson/vouch/internal/validation"
)

const (
	auditService = "transactions"

	maxPartyIDLength = 255
)

// transactionUseCase implements TransactionUseCase.
type transactionUseCase struct {
	txManager       database.TxManager
	transactionRepo TransactionRepository
	keyPairs        KeyPairReader
	videos          VideoStore
	verifier        signature.Verifier
	events          EventPublisher
	audit           AuditRecorder
	logger          *slog.Logger
	now             func() time.Time
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager database.TxManager,
	transactionRepo TransactionRepository,
	keyPairs KeyPairReader,
	videos VideoStore,
	verifier signature.Verifier,
	events EventPublisher,
	audit AuditRecorder,
	logger *slog.Logger,
) TransactionUseCase {
	return &transactionUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		keyPairs:        keyPairs,
		videos:          videos,
		verifier:        verifier,
		events:          events,
		audit:           audit,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type createInput struct {
	RecipientID    string
	Amount         string
	ValidityMonths int
}

func (i createInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.RecipientID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, maxPartyIDLength),
		),
		validation.Field(&i.Amount,
			validation.Required,
			customValidation.Amount,
		),
		validation.Field(&i.ValidityMonths,
			validation.Required,
			customValidation.ValidityMonths,
		),
	)
}

// Create validates the request, stores the video and persists the transaction as PENDING
// together with its transaction.created event. A video stored before a failed row write
// stays behind as an orphan for CleanOrphanVideos.
func (t *transactionUseCase) Create(
	ctx context.Context,
	input *transactionsDomain.CreateTransactionInput,
	video io.Reader,
) (*transactionsDomain.Transaction, error) {
	if input.OwnerID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	err := (createInput{
		RecipientID:    input.RecipientID,
		Amount:         input.Amount,
		ValidityMonths: input.ValidityMonths,
	}).Validate()
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}
	if len(input.Signature) == 0 {
		return nil, transactionsDomain.ErrMissingSignature
	}
	if input.RecipientID == input.OwnerID {
		return nil, transactionsDomain.ErrSelfTransfer
	}

	amountMinor, err := customValidation.ParseAmountMinor(input.Amount)
	if err != nil {
		return nil, err
	}

	publicKey, err := t.signingKey(ctx, input)
	if err != nil {
		t.record(ctx, input.OwnerID, "transaction_create", "keyId="+input.KeyPairID.String(), auditDomain.EventStatusFailed)
		return nil, err
	}

	attrs, err := t.videos.Put(ctx, video, input.VideoContentType)
	if err != nil {
		return nil, err
	}

	now := t.now()
	transaction := &transactionsDomain.Transaction{
		ID:                uuid.Must(uuid.NewV7()),
		OwnerID:           input.OwnerID,
		RecipientID:       input.RecipientID,
		AmountMinor:       amountMinor,
		ValidityMonths:    input.ValidityMonths,
		KeyPairID:         input.KeyPairID,
		PublicKeySnapshot: publicKey,
		VideoRef:          attrs.Ref,
		Signature:         input.Signature,
		Status:            transactionsDomain.TransactionStatusPending,
		CreatedAt:         now,
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := t.transactionRepo.Create(ctx, transaction); err != nil {
			return err
		}
		return t.publish(ctx, outboxDomain.EventTransactionCreated, transaction, "", now)
	})
	if err != nil {
		t.record(ctx, input.OwnerID, "transaction_create", "videoRef="+attrs.Ref, auditDomain.EventStatusFailed)
		return nil, apperrors.WrapIO(err, "failed to persist transaction")
	}

	t.record(ctx, input.OwnerID, "transaction_create", "transactionId="+transaction.ID.String(), auditDomain.EventStatusSuccess)
	return transaction, nil
}

// signingKey checks that the key belongs to the owner and is active, and returns the
// public key to snapshot.
func (t *transactionUseCase) signingKey(
	ctx context.Context,
	input *transactionsDomain.CreateTransactionInput,
) (string, error) {
	if input.KeyPairID == uuid.Nil {
		return "", transactionsDomain.ErrSigningKeyUnusable
	}

	keyPair, err := t.keyPairs.Get(ctx, input.KeyPairID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", transactionsDomain.ErrSigningKeyUnusable
		}
		return "", apperrors.WrapIO(err, "failed to load signing key")
	}
	if keyPair.OwnerID != input.OwnerID {
		return "", transactionsDomain.ErrSigningKeyNotOwned
	}
	if !keyPair.IsActive(t.now()) {
		return "", transactionsDomain.ErrSigningKeyUnusable
	}

	stored, err := signature.NormalizePublicKeyPEM(keyPair.PublicKey)
	if err != nil {
		return "", err
	}
	if input.PublicKeySnapshot == "" {
		return stored, nil
	}

	snapshot, err := signature.NormalizePublicKeyPEM(input.PublicKeySnapshot)
	if err != nil {
		return "", err
	}
	if snapshot != stored {
		return "", transactionsDomain.ErrPublicKeyMismatch
	}
	return snapshot, nil
}

// Get returns a transaction visible to actorID.
func (t *transactionUseCase) Get(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (*transactionsDomain.Transaction, error) {
	transaction, err := t.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.OwnerID != actorID && transaction.RecipientID != actorID {
		return nil, transactionsDomain.ErrTransactionNotVisible
	}
	return transaction, nil
}

// ListOwned returns the transactions of ownerID.
func (t *transactionUseCase) ListOwned(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	transactions, err := t.transactionRepo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, apperrors.WrapIO(err, "failed to list transactions")
	}
	return transactions, nil
}

// ListToVerify returns the pending transactions addressed to recipientID.
func (t *transactionUseCase) ListToVerify(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	transactions, err := t.transactionRepo.ListPendingByRecipient(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, apperrors.WrapIO(err, "failed to list transactions to verify")
	}
	return transactions, nil
}

// Verify checks the stored signature with the candidate key supplied by the recipient.
// Only the candidate key is consulted: the signing key may have been revoked since.
// An already VERIFIED transaction returns true without another check.
func (t *transactionUseCase) Verify(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID, candidatePublicKey string,
) (bool, error) {
	transaction, err := t.load(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if transaction.RecipientID != actorID {
		return false, transactionsDomain.ErrNotRecipient
	}
	if transaction.IsVerified() {
		return true, nil
	}

	details := "transactionId=" + transactionID.String()

	valid, err := t.verifier.Verify(
		[]byte(candidatePublicKey),
		signature.Canonicalize(transaction.Payload()),
		transaction.Signature,
	)
	if err != nil {
		t.record(ctx, actorID, "transaction_verify", details, auditDomain.EventStatusFailed)
		return false, err
	}

	now := t.now()
	if !valid {
		t.record(ctx, actorID, "transaction_verify", details, auditDomain.EventStatusFailed)
		err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
			return t.publish(ctx, outboxDomain.EventTransactionVerificationFailed, transaction, actorID, now)
		})
		if err != nil {
			t.logger.Error("failed to publish verification failure",
				slog.String("transaction_id", transactionID.String()),
				slog.Any("error", err))
		}
		return false, nil
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		won, err := t.transactionRepo.MarkVerified(ctx, transactionID, now)
		if err != nil {
			return err
		}
		// A concurrent verifier already moved the row and published the event.
		if !won {
			return nil
		}
		return t.publish(ctx, outboxDomain.EventTransactionVerified, transaction, actorID, now)
	})
	if err != nil {
		t.record(ctx, actorID, "transaction_verify", details, auditDomain.EventStatusFailed)
		return false, apperrors.WrapIO(err, "failed to mark transaction verified")
	}

	t.record(ctx, actorID, "transaction_verify", details, auditDomain.EventStatusSuccess)
	return true, nil
}

// OpenVideo returns the video of a transaction visible to actorID.
func (t *transactionUseCase) OpenVideo(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (io.ReadCloser, *blob.Attributes, error) {
	transaction, err := t.Get(ctx, transactionID, actorID)
	if err != nil {
		return nil, nil, err
	}
	return t.videos.Get(ctx, transaction.VideoRef)
}

// CleanOrphanVideos removes stored videos that no transaction references. Videos younger
// than olderThan are skipped so that an upload whose row is still being written survives.
// Each candidate is checked again right before deletion, since a Create may have
// re-uploaded the same content after the listing.
func (t *transactionUseCase) CleanOrphanVideos(
	ctx context.Context,
	olderThan time.Duration,
	dryRun bool,
) ([]string, error) {
	cutoff := t.now().Add(-olderThan)

	orphans := make([]string, 0)
	err := t.videos.List(ctx, func(attrs *blob.Attributes) error {
		if attrs.ModTime.After(cutoff) {
			return nil
		}
		referenced, err := t.transactionRepo.VideoRefExists(ctx, attrs.Ref)
		if err != nil {
			return apperrors.WrapIO(err, "failed to check video reference")
		}
		if !referenced {
			orphans = append(orphans, attrs.Ref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dryRun {
		return orphans, nil
	}

	deleted := make([]string, 0, len(orphans))
	for _, ref := range orphans {
		orphaned, err := t.stillOrphaned(ctx, ref, cutoff)
		if err != nil {
			return deleted, err
		}
		if !orphaned {
			continue
		}
		if err := t.videos.Delete(ctx, ref); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return deleted, err
		}
		deleted = append(deleted, ref)
	}
	if len(deleted) > 0 {
		t.record(ctx, "system", "video_orphan_clean", fmt.Sprintf("count=%d", len(deleted)), auditDomain.EventStatusSuccess)
	}
	return deleted, nil
}

func (t *transactionUseCase) stillOrphaned(ctx context.Context, ref string, cutoff time.Time) (bool, error) {
	attrs, err := t.videos.Stat(ctx, ref)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if attrs.ModTime.After(cutoff) {
		return false, nil
	}

	referenced, err := t.transactionRepo.VideoRefExists(ctx, ref)
	if err != nil {
		return false, apperrors.WrapIO(err, "failed to check video reference")
	}
	return !referenced, nil
}

func (t *transactionUseCase) load(
	ctx context.Context,
	transactionID uuid.UUID,
) (*transactionsDomain.Transaction, error) {
	transaction, err := t.transactionRepo.Get(ctx, transactionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.WrapIO(err, "failed to load transaction")
	}
	return transaction, nil
}

func (t *transactionUseCase) publish(
	ctx context.Context,
	eventType string,
	transaction *transactionsDomain.Transaction,
	actorID string,
	now time.Time,
) error {
	event, err := outboxDomain.NewOutboxEvent(eventType, outboxDomain.TransactionEventPayload{
		TransactionID: transaction.ID.String(),
		OwnerID:       transaction.OwnerID,
		RecipientID:   transaction.RecipientID,
		Amount:        transaction.Amount(),
		ActorID:       actorID,
	}, now)
	if err != nil {
		return err
	}
	return t.events.Create(ctx, event)
}

func (t *transactionUseCase) record(
	ctx context.Context,
	actor, action, details string,
	status auditDomain.EventStatus,
) {
	t.audit.Record(ctx, auditDomain.Event{
		Actor:   actor,
		Service: auditService,
		Action:  action,
		Details: details,
		Status:  status,
	})
}
