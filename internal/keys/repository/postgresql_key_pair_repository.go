// Package repository implements key pair persistence for PostgreSQL and MySQL.
//
// PostgreSQL stores ids as native UUID, MySQL as BINARY(16). All methods join the
// transaction carried by ctx through database.GetTx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/vouch/internal/database"
	apperrors "github.com/allisson/vouch/internal/errors"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
)

const keyPairColumns = `id, owner_id, key_name, public_key, status, expires_at, created_at, revoked_at`

// PostgreSQLKeyPairRepository implements key pair persistence for PostgreSQL databases.
type PostgreSQLKeyPairRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyPairRepository creates a new PostgreSQL key pair repository instance.
func NewPostgreSQLKeyPairRepository(db *sql.DB) *PostgreSQLKeyPairRepository {
	return &PostgreSQLKeyPairRepository{db: db}
}

// Create inserts a new key pair.
func (p *PostgreSQLKeyPairRepository) Create(ctx context.Context, keyPair *keysDomain.KeyPair) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_pairs (` + keyPairColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyPair.ID,
		keyPair.OwnerID,
		keyPair.KeyName,
		keyPair.PublicKey,
		string(keyPair.Status),
		keyPair.ExpiresAt,
		keyPair.CreatedAt,
		keyPair.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key pair")
	}
	return nil
}

// Get retrieves a key pair by id.
func (p *PostgreSQLKeyPairRepository) Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + keyPairColumns + ` FROM key_pairs WHERE id = $1`

	keyPair, err := scanPostgreSQLKeyPair(querier.QueryRowContext(ctx, query, keyPairID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keysDomain.ErrKeyPairNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key pair")
	}
	return keyPair, nil
}

// ListByOwner returns the key pairs of ownerID, newest first.
func (p *PostgreSQLKeyPairRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	query := `SELECT ` + keyPairColumns + ` FROM key_pairs
			  WHERE owner_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	return p.list(ctx, query, ownerID, limit, offset)
}

// ListActiveByOwner returns stored ACTIVE key pairs of ownerID expiring after now.
func (p *PostgreSQLKeyPairRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID string,
	now time.Time,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	query := `SELECT ` + keyPairColumns + ` FROM key_pairs
			  WHERE owner_id = $1 AND status = 'active' AND expires_at > $2
			  ORDER BY created_at DESC, id DESC
			  LIMIT $3 OFFSET $4`

	return p.list(ctx, query, ownerID, now, limit, offset)
}

// Revoke performs a conditional update so only an ACTIVE, unexpired row changes.
func (p *PostgreSQLKeyPairRepository) Revoke(
	ctx context.Context,
	keyPairID uuid.UUID,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_pairs SET status = 'revoked', revoked_at = $2
			  WHERE id = $1 AND status = 'active' AND expires_at > $2`

	result, err := querier.ExecContext(ctx, query, keyPairID, revokedAt)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke key pair")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// ExpireStale marks ACTIVE key pairs with expires_at <= now as EXPIRED.
func (p *PostgreSQLKeyPairRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_pairs SET status = 'expired' WHERE status = 'active' AND expires_at <= $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to expire key pairs")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

func (p *PostgreSQLKeyPairRepository) list(ctx context.Context, query string, args ...any) ([]*keysDomain.KeyPair, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key pairs")
	}
	defer func() {
		_ = rows.Close()
	}()

	keyPairs := make([]*keysDomain.KeyPair, 0)
	for rows.Next() {
		keyPair, err := scanPostgreSQLKeyPair(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key pair")
		}
		keyPairs = append(keyPairs, keyPair)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate key pairs")
	}
	return keyPairs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLKeyPair(row rowScanner) (*keysDomain.KeyPair, error) {
	var keyPair keysDomain.KeyPair
	var status string
	err := row.Scan(
		&keyPair.ID,
		&keyPair.OwnerID,
		&keyPair.KeyName,
		&keyPair.PublicKey,
		&status,
		&keyPair.ExpiresAt,
		&keyPair.CreatedAt,
		&keyPair.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	keyPair.Status = keysDomain.KeyStatus(status)
	return &keyPair, nil
}
