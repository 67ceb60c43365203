// Package repository implements transaction persistence for PostgreSQL and MySQL.
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

const transactionColumns = `id, owner_id, recipient_id, amount_minor, validity_months, key_pair_id,
	public_key_snapshot, video_ref, signature, status, created_at, verified_at`

// PostgreSQLTransactionRepository implements transaction persistence for PostgreSQL databases.
type PostgreSQLTransactionRepository struct {
	db *sql.DB
}

// NewPostgreSQLTransactionRepository creates a new PostgreSQL transaction repository instance.
func NewPostgreSQLTransactionRepository(db *sql.DB) *PostgreSQLTransactionRepository {
	return &PostgreSQLTransactionRepository{db: db}
}

// Create inserts a new transaction.
func (p *PostgreSQLTransactionRepository) Create(
	ctx context.Context,
	transaction *transactionsDomain.Transaction,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO transactions (` + transactionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		transaction.ID,
		transaction.OwnerID,
		transaction.RecipientID,
		transaction.AmountMinor,
		transaction.ValidityMonths,
		transaction.KeyPairID,
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
func (p *PostgreSQLTransactionRepository) Get(
	ctx context.Context,
	transactionID uuid.UUID,
) (*transactionsDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanPostgreSQLTransaction(querier.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transactionsDomain.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction")
	}
	return transaction, nil
}

// ListByOwner returns the transactions of ownerID, newest first.
func (p *PostgreSQLTransactionRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
			  WHERE owner_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	return p.list(ctx, query, ownerID, limit, offset)
}

// ListPendingByRecipient returns the PENDING transactions addressed to recipientID, oldest first.
func (p *PostgreSQLTransactionRepository) ListPendingByRecipient(
	ctx context.Context,
	recipientID string,
	offset, limit int,
) ([]*transactionsDomain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
			  WHERE recipient_id = $1 AND status = 'pending'
			  ORDER BY created_at ASC, id ASC
			  LIMIT $2 OFFSET $3`

	return p.list(ctx, query, recipientID, limit, offset)
}

// MarkVerified performs a conditional update so only a PENDING row changes.
func (p *PostgreSQLTransactionRepository) MarkVerified(
	ctx context.Context,
	transactionID uuid.UUID,
	verifiedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE transactions SET status = 'verified', verified_at = $2
			  WHERE id = $1 AND status = 'pending'`

	result, err := querier.ExecContext(ctx, query, transactionID, verifiedAt)
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
func (p *PostgreSQLTransactionRepository) VideoRefExists(ctx context.Context, videoRef string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE video_ref = $1)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, videoRef).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check video reference")
	}
	return exists, nil
}

func (p *PostgreSQLTransactionRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*transactionsDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer func() {
		_ = rows.Close()
	}()

	transactions := make([]*transactionsDomain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanPostgreSQLTransaction(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLTransaction(row rowScanner) (*transactionsDomain.Transaction, error) {
	var transaction transactionsDomain.Transaction
	var status string
	err := row.Scan(
		&transaction.ID,
		&transaction.OwnerID,
		&transaction.RecipientID,
		&transaction.AmountMinor,
		&transaction.ValidityMonths,
		&transaction.KeyPairID,
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
	transaction.Status = transactionsDomain.TransactionStatus(status)
	return &transaction, nil
}
