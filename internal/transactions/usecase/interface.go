// Package usecase implements the transaction ledger: creation of signed transfer
// authorizations, recipient verification and access to the bound video statement.
package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	"github.com/allisson/vouch/internal/blob"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	outboxDomain "github.com/allisson/vouch/internal/outbox/domain"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
)

// TransactionRepository defines the interface for transaction persistence.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *transactionsDomain.Transaction) error
	Get(ctx context.Context, transactionID uuid.UUID) (*transactionsDomain.Transaction, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*transactionsDomain.Transaction, error)
	ListPendingByRecipient(
		ctx context.Context,
		recipientID string,
		offset, limit int,
	) ([]*transactionsDomain.Transaction, error)
	// MarkVerified moves a PENDING row to VERIFIED. It reports false when the row was
	// already VERIFIED, so that only one concurrent caller wins.
	MarkVerified(ctx context.Context, transactionID uuid.UUID, verifiedAt time.Time) (bool, error)
	// VideoRefExists reports whether any transaction references videoRef.
	VideoRefExists(ctx context.Context, videoRef string) (bool, error)
}

// KeyPairReader loads signing keys.
type KeyPairReader interface {
	Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error)
}

// VideoStore persists video statements.
type VideoStore interface {
	Put(ctx context.Context, r io.Reader, contentType string) (*blob.Attributes, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, *blob.Attributes, error)
	Stat(ctx context.Context, ref string) (*blob.Attributes, error)
	List(ctx context.Context, fn func(attrs *blob.Attributes) error) error
	Delete(ctx context.Context, ref string) error
}

// EventPublisher writes outbox events, joining the transaction carried by ctx.
type EventPublisher interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AuditRecorder records audit events. Failures never propagate to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event)
}

// TransactionUseCase defines transaction ledger operations.
type TransactionUseCase interface {
	// Create stores video and persists a PENDING transaction signed by the owner.
	Create(
		ctx context.Context,
		input *transactionsDomain.CreateTransactionInput,
		video io.Reader,
	) (*transactionsDomain.Transaction, error)
	// Get returns a transaction visible to actorID as owner or recipient.
	Get(ctx context.Context, transactionID uuid.UUID, actorID string) (*transactionsDomain.Transaction, error)
	// ListOwned returns the transactions created by ownerID, newest first.
	ListOwned(ctx context.Context, ownerID string, offset, limit int) ([]*transactionsDomain.Transaction, error)
	// ListToVerify returns the PENDING transactions addressed to recipientID.
	ListToVerify(
		ctx context.Context,
		recipientID string,
		offset, limit int,
	) ([]*transactionsDomain.Transaction, error)
	// Verify checks the stored signature against candidatePublicKey. A mismatch returns
	// false with a nil error and leaves the transaction PENDING.
	Verify(ctx context.Context, transactionID uuid.UUID, actorID, candidatePublicKey string) (bool, error)
	// OpenVideo streams the video bound to a transaction visible to actorID.
	// The caller must close the reader.
	OpenVideo(ctx context.Context, transactionID uuid.UUID, actorID string) (io.ReadCloser, *blob.Attributes, error)
	// CleanOrphanVideos finds stored videos older than olderThan that no transaction
	// references and deletes them unless dryRun is set.
	CleanOrphanVideos(ctx context.Context, olderThan time.Duration, dryRun bool) ([]string, error)
}
