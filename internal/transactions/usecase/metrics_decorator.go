package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/vouch/internal/blob"
	"github.com/allisson/vouch/internal/metrics"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
)

// transactionUseCaseWithMetrics decorates TransactionUseCase with metrics instrumentation.
type transactionUseCaseWithMetrics struct {
	next    TransactionUseCase
	metrics metrics.BusinessMetrics
}

// NewTransactionUseCaseWithMetrics wraps a TransactionUseCase with metrics recording.
func NewTransactionUseCaseWithMetrics(useCase TransactionUseCase, m metrics.BusinessMetrics) TransactionUseCase {
	return &transactionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *transactionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	metrics.Observe(ctx, t.metrics, "transactions", operation, start, status)
}

// Create records metrics for transaction creation.
func (t *transactionUseCaseWithMetrics) Create(
	ctx context.Context,
	input *transactionsDomain.CreateTransactionInput,
	video io.Reader,
) (*transactionsDomain.Transaction, error) {
	start := time.Now()
	transaction, err := t.next.Create(ctx, input, video)
	t.record(ctx, "transaction_create", start, metrics.StatusOf(err))
	return transaction, err
}

// Get records metrics for transaction lookups.
func (t *transactionUseCaseWithMetrics) Get(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (*transactionsDomain.Transaction, error) {
	start := time.Now()
	transaction, err := t.next.Get(ctx, transactionID, actorID)
	t.record(ctx, "transaction_get", start, metrics.StatusOf(err))
	return transaction, err
}

// ListOwned records metrics for owner listings.
func (t *transactionUseCaseWithMetrics) ListOwned(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	start := time.Now()
	transactions, err := t.next.ListOwned(ctx, ownerID, offset, limit)
	t.record(ctx, "transaction_list_owned", start, metrics.StatusOf(err))
	return transactions, err
}

// ListToVerify records metrics for recipient listings.
func (t *transactionUseCaseWithMetrics) ListToVerify(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	start := time.Now()
	transactions, err := t.next.ListToVerify(ctx, recipientID, offset, limit)
	t.record(ctx, "transaction_list_to_verify", start, metrics.StatusOf(err))
	return transactions, err
}

// Verify records metrics for verification. A mismatch is tagged "invalid".
func (t *transactionUseCaseWithMetrics) Verify(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID, candidatePublicKey string,
) (bool, error) {
	start := time.Now()
	valid, err := t.next.Verify(ctx, transactionID, actorID, candidatePublicKey)
	status := metrics.StatusOf(err)
	if err == nil && !valid {
		status = metrics.StatusInvalid
	}
	t.record(ctx, "transaction_verify", start, status)
	return valid, err
}

// OpenVideo records metrics for video access.
func (t *transactionUseCaseWithMetrics) OpenVideo(
	ctx context.Context,
	transactionID uuid.UUID,
	actorID string,
) (io.ReadCloser, *blob.Attributes, error) {
	start := time.Now()
	reader, attrs, err := t.next.OpenVideo(ctx, transactionID, actorID)
	t.record(ctx, "transaction_open_video", start, metrics.StatusOf(err))
	return reader, attrs, err
}

// CleanOrphanVideos records metrics for the orphan cleanup batch.
func (t *transactionUseCaseWithMetrics) CleanOrphanVideos(
	ctx context.Context,
	olderThan time.Duration,
	dryRun bool,
) ([]string, error) {
	start := time.Now()
	refs, err := t.next.CleanOrphanVideos(ctx, olderThan, dryRun)
	t.record(ctx, "transaction_clean_orphan_videos", start, metrics.StatusOf(err))
	return refs, err
}
