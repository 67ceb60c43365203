package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	auditMocks "github.com/allisson/vouch/internal/audit/usecase/mocks"
	"github.com/allisson/vouch/internal/blob"
	databaseMocks "github.com/allisson/vouch/internal/database/mocks"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	outboxDomain "github.com/allisson/vouch/internal/outbox/domain"
	"github.com/allisson/vouch/internal/signature"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
	"github.com/allisson/vouch/internal/validation"
)

// memoryLedger is an in-memory TransactionRepository, KeyPairReader and EventPublisher.
type memoryLedger struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*transactionsDomain.Transaction
	keyPairs     map[uuid.UUID]*keysDomain.KeyPair
	events       []*outboxDomain.OutboxEvent
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		transactions: make(map[uuid.UUID]*transactionsDomain.Transaction),
		keyPairs:     make(map[uuid.UUID]*keysDomain.KeyPair),
	}
}

func (m *memoryLedger) Create(_ context.Context, transaction *transactionsDomain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *transaction
	m.transactions[transaction.ID] = &stored
	return nil
}

func (m *memoryLedger) Get(_ context.Context, transactionID uuid.UUID) (*transactionsDomain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, ok := m.transactions[transactionID]
	if !ok {
		return nil, transactionsDomain.ErrTransactionNotFound
	}
	copied := *transaction
	return &copied, nil
}

func (m *memoryLedger) ListByOwner(
	_ context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	return m.filter(func(tx *transactionsDomain.Transaction) bool { return tx.OwnerID == ownerID }, offset, limit), nil
}

func (m *memoryLedger) ListPendingByRecipient(
	_ context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	return m.filter(func(tx *transactionsDomain.Transaction) bool {
		return tx.RecipientID == recipientID && tx.Status == transactionsDomain.TransactionStatusPending
	}, offset, limit), nil
}

func (m *memoryLedger) MarkVerified(_ context.Context, transactionID uuid.UUID, verifiedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction, ok := m.transactions[transactionID]
	if !ok || transaction.Status != transactionsDomain.TransactionStatusPending {
		return false, nil
	}
	transaction.Status = transactionsDomain.TransactionStatusVerified
	transaction.VerifiedAt = &verifiedAt
	return true, nil
}

func (m *memoryLedger) VideoRefExists(_ context.Context, videoRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, transaction := range m.transactions {
		if transaction.VideoRef == videoRef {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryLedger) filter(
	keep func(*transactionsDomain.Transaction) bool,
	offset, limit int,
) []*transactionsDomain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]*transactionsDomain.Transaction, 0)
	for _, transaction := range m.transactions {
		if keep(transaction) {
			copied := *transaction
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return []*transactionsDomain.Transaction{}
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched
}

type memoryKeyPairs struct {
	ledger *memoryLedger
}

func (k memoryKeyPairs) Get(_ context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error) {
	k.ledger.mu.Lock()
	defer k.ledger.mu.Unlock()
	keyPair, ok := k.ledger.keyPairs[keyPairID]
	if !ok {
		return nil, keysDomain.ErrKeyPairNotFound
	}
	return keyPair, nil
}

type memoryEvents struct {
	ledger *memoryLedger
}

func (e memoryEvents) Create(_ context.Context, event *outboxDomain.OutboxEvent) error {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()
	e.ledger.events = append(e.ledger.events, event)
	return nil
}

func (m *memoryLedger) eventCount(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, event := range m.events {
		if event.EventType == eventType {
			count++
		}
	}
	return count
}

func newLedgerFlow(t *testing.T) (*transactionUseCase, *memoryLedger, *blob.Store) {
	t.Helper()
	loadTestKeys(t)

	ledger := newMemoryLedger()
	store := blob.NewStore(memblob.OpenBucket(nil), nil, 1<<20)
	t.Cleanup(func() {
		_ = store.Close()
	})

	audit := &auditMocks.MockRecorder{}
	audit.On("Record", mock.Anything, mock.Anything).Return().Maybe()

	uc := NewTransactionUseCase(
		databaseMocks.NewMockTxManager(),
		ledger,
		memoryKeyPairs{ledger: ledger},
		store,
		signature.NewRSAPSSVerifier(),
		memoryEvents{ledger: ledger},
		audit,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*transactionUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc, ledger, store
}

// createSigned registers the signing key for owner-1 and creates a transaction of
// 1500.00 to recipient-1 signed client-side over the canonical payload.
func createSigned(t *testing.T, uc *transactionUseCase, ledger *memoryLedger) *transactionsDomain.Transaction {
	t.Helper()
	ctx := context.Background()

	keyPair := activeKeyPair("owner-1", signingKey.publicPEM)
	ledger.keyPairs[keyPair.ID] = keyPair

	amountMinor, err := validation.ParseAmountMinor("1500.00")
	require.NoError(t, err)
	sig := signPayload(t, signingKey.privatePEM, signature.Payload{
		OwnerID:        "owner-1",
		RecipientID:    "recipient-1",
		AmountMinor:    amountMinor,
		ValidityMonths: 12,
		VideoRef:       signature.VideoRef(testVideoData),
	})

	input := validInput(keyPair.ID)
	input.PublicKeySnapshot = signingKey.publicPEM
	input.Signature = sig

	transaction, err := uc.Create(ctx, input, bytes.NewReader(testVideoData))
	require.NoError(t, err)
	return transaction
}

func TestLedgerFlow_CreateListVerify(t *testing.T) {
	ctx := context.Background()
	uc, ledger, store := newLedgerFlow(t)

	transaction := createSigned(t, uc, ledger)
	assert.Equal(t, transactionsDomain.TransactionStatusPending, transaction.Status)
	assert.Equal(t, 1, ledger.eventCount(outboxDomain.EventTransactionCreated))

	exists, err := store.Exists(ctx, transaction.VideoRef)
	require.NoError(t, err)
	assert.True(t, exists)

	owned, err := uc.ListOwned(ctx, "owner-1", 0, 50)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, transaction.ID, owned[0].ID)

	toVerify, err := uc.ListToVerify(ctx, "recipient-1", 0, 50)
	require.NoError(t, err)
	require.Len(t, toVerify, 1)

	valid, err := uc.Verify(ctx, transaction.ID, "recipient-1", unrelatedKey.publicPEM)
	require.NoError(t, err)
	assert.False(t, valid)

	stored, err := uc.Get(ctx, transaction.ID, "recipient-1")
	require.NoError(t, err)
	assert.Equal(t, transactionsDomain.TransactionStatusPending, stored.Status)

	valid, err = uc.Verify(ctx, transaction.ID, "recipient-1", signingKey.publicPEM)
	require.NoError(t, err)
	assert.True(t, valid)

	stored, err = uc.Get(ctx, transaction.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, transactionsDomain.TransactionStatusVerified, stored.Status)
	require.NotNil(t, stored.VerifiedAt)
	assert.True(t, stored.VerifiedAt.Equal(fixedNow))

	toVerify, err = uc.ListToVerify(ctx, "recipient-1", 0, 50)
	require.NoError(t, err)
	assert.Empty(t, toVerify)

	valid, err = uc.Verify(ctx, transaction.ID, "recipient-1", signingKey.publicPEM)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.Equal(t, 1, ledger.eventCount(outboxDomain.EventTransactionVerified))
	assert.Equal(t, 1, ledger.eventCount(outboxDomain.EventTransactionVerificationFailed))
}

func TestLedgerFlow_RevokedKeyStillVerifiesExistingTransaction(t *testing.T) {
	ctx := context.Background()
	uc, ledger, _ := newLedgerFlow(t)

	transaction := createSigned(t, uc, ledger)
	keyPair := ledger.keyPairs[transaction.KeyPairID]
	keyPair.Status = keysDomain.KeyStatusRevoked

	valid, err := uc.Verify(ctx, transaction.ID, "recipient-1", transaction.PublicKeySnapshot)

	require.NoError(t, err)
	assert.True(t, valid)
}

func TestLedgerFlow_ConcurrentVerifyTransitionsOnce(t *testing.T) {
	ctx := context.Background()
	uc, ledger, _ := newLedgerFlow(t)
	transaction := createSigned(t, uc, ledger)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]bool, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Verify(ctx, transaction.ID, "recipient-1", signingKey.publicPEM)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i])
	}
	assert.Equal(t, 1, ledger.eventCount(outboxDomain.EventTransactionVerified))
}

func TestLedgerFlow_CleanOrphanVideos(t *testing.T) {
	ctx := context.Background()
	uc, ledger, store := newLedgerFlow(t)
	transaction := createSigned(t, uc, ledger)

	orphan, err := store.Put(ctx, bytes.NewReader([]byte("upload whose row write failed")), "video/mp4")
	require.NoError(t, err)

	// memblob stamps objects with the wall clock, so move the use case clock past them.
	uc.now = func() time.Time { return time.Now().Add(time.Hour) }

	refs, err := uc.CleanOrphanVideos(ctx, time.Minute, false)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan.Ref}, refs)

	exists, err := store.Exists(ctx, orphan.Ref)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, transaction.VideoRef)
	require.NoError(t, err)
	assert.True(t, exists)
}
