package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/vouch/internal/database"
	apperrors "github.com/allisson/vouch/internal/errors"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
)

// MySQLTransactionRepository implements transaction persistence for MySQL databases.
// Both id and key_pair_id are stored as BINARY(16).
type MySQLTransactionRepository struct {
	db *sql.DB
}

// NewMySQLTransactionRepository creates a new MySQL transaction repository instance.
func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

// Create inserts a new transaction.
func (m *MySQLTransactionRepository) Create(ctx context.Context, transaction *transactionsDomain.Transaction) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO transactions (` + transactionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := transaction.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal transaction id")
	}
	keyPairID, err := transaction.KeyPairID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key pair id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		transaction.OwnerID,
		transaction.RecipientID,
		transaction.AmountMinor,
		transaction.ValidityMonths,
		keyPairID,
		transaction.PublicKeySnapshot,
		transaction.VideoRef,
		transaction.Signature,
		string(transaction.Status),
		transaction.CreatedAt,
		transaction.VerifiedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

// Get retrieves a transaction by id.
func (m *MySQLTransactionRepository) Get(
	ctx context.Context,
	transactionID uuid.UUID,
) (*transactionsDomain.Transaction, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	id, err := transactionID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal transaction id")
	}

	transaction, err := scanMySQLTransaction(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transactionsDomain.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction")
	}
	return transaction, nil
}

// ListByOwner returns the transactions of ownerID, newest first.
func (m *MySQLTransactionRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
			  WHERE owner_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, ownerID, limit, offset)
}

// ListPendingByRecipient returns the PENDING transactions addressed to recipientID, oldest first.
func (m *MySQLTransactionRepository) ListPendingByRecipient(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
			  WHERE recipient_id = ? AND status = 'pending'
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, recipientID, limit, offset)
}

// MarkVerified performs a conditional update so only a PENDING row changes.
func (m *MySQLTransactionRepository) MarkVerified(
	ctx context.Context,
	transactionID uuid.UUID,
	verifiedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE transactions SET status = 'verified', verified_at = ?
			  WHERE id = ? AND status = 'pending'`

	id, err := transactionID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal transaction id")
	}

	result, err := querier.ExecContext(ctx, query, verifiedAt, id)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark transaction verified")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// VideoRefExists reports whether any transaction references videoRef.
func (m *MySQLTransactionRepository) VideoRefExists(ctx context.Context, videoRef string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE video_ref = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, videoRef).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check video reference")
	}
	return exists, nil
}

func (m *MySQLTransactionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*transactionsDomain.Transaction, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer func() {
		_ = rows.Close()
	}()

	transactions := make([]*transactionsDomain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanMySQLTransaction(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction")
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transactions")
	}
	return transactions, nil
}

func scanMySQLTransaction(row rowScanner) (*transactionsDomain.Transaction, error) {
	var transaction transactionsDomain.Transaction
	var id, keyPairID []byte
	var status string
	err := row.Scan(
		&id,
		&transaction.OwnerID,
		&transaction.RecipientID,
		&transaction.AmountMinor,
		&transaction.ValidityMonths,
		&keyPairID,
		&transaction.PublicKeySnapshot,
		&transaction.VideoRef,
		&transaction.Signature,
		&status,
		&transaction.CreatedAt,
		&transaction.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := transaction.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal transaction id")
	}
	if err := transaction.KeyPairID.UnmarshalBinary(keyPairID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key pair id")
	}
	transaction.Status = transactionsDomain.TransactionStatus(status)
	return &transaction, nil
}
