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

// MySQLKeyPairRepository implements key pair persistence for MySQL databases.
// UUIDs are stored as BINARY(16) via uuid.MarshalBinary.
type MySQLKeyPairRepository struct {
	db *sql.DB
}

// NewMySQLKeyPairRepository creates a new MySQL key pair repository instance.
func NewMySQLKeyPairRepository(db *sql.DB) *MySQLKeyPairRepository {
	return &MySQLKeyPairRepository{db: db}
}

// Create inserts a new key pair.
func (m *MySQLKeyPairRepository) Create(ctx context.Context, keyPair *keysDomain.KeyPair) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_pairs (` + keyPairColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := keyPair.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key pair id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLKeyPairRepository) Get(ctx context.Context, keyPairID uuid.UUID) (*keysDomain.KeyPair, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + keyPairColumns + ` FROM key_pairs WHERE id = ?`

	id, err := keyPairID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key pair id")
	}

	keyPair, err := scanMySQLKeyPair(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keysDomain.ErrKeyPairNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key pair")
	}
	return keyPair, nil
}

// ListByOwner returns the key pairs of ownerID, newest first.
func (m *MySQLKeyPairRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	query := `SELECT ` + keyPairColumns + ` FROM key_pairs
			  WHERE owner_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, ownerID, limit, offset)
}

// ListActiveByOwner returns stored ACTIVE key pairs of ownerID expiring after now.
func (m *MySQLKeyPairRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID string,
	now time.Time,
	offset, limit int,
) ([]*keysDomain.KeyPair, error) {
	query := `SELECT ` + keyPairColumns + ` FROM key_pairs
			  WHERE owner_id = ? AND status = 'active' AND expires_at > ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, ownerID, now, limit, offset)
}

// Revoke performs a conditional update so only an ACTIVE, unexpired row changes.
func (m *MySQLKeyPairRepository) Revoke(
	ctx context.Context,
	keyPairID uuid.UUID,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_pairs SET status = 'revoked', revoked_at = ?
			  WHERE id = ? AND status = 'active' AND expires_at > ?`

	id, err := keyPairID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal key pair id")
	}

	result, err := querier.ExecContext(ctx, query, revokedAt, id, revokedAt)
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
func (m *MySQLKeyPairRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_pairs SET status = 'expired' WHERE status = 'active' AND expires_at <= ?`

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

func (m *MySQLKeyPairRepository) list(ctx context.Context, query string, args ...any) ([]*keysDomain.KeyPair, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key pairs")
	}
	defer func() {
		_ = rows.Close()
	}()

	keyPairs := make([]*keysDomain.KeyPair, 0)
	for rows.Next() {
		keyPair, err := scanMySQLKeyPair(rows)
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

func scanMySQLKeyPair(row rowScanner) (*keysDomain.KeyPair, error) {
	var keyPair keysDomain.KeyPair
	var id []byte
	var status string
	err := row.Scan(
		&id,
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
	if err := keyPair.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key pair id")
	}
	keyPair.Status = keysDomain.KeyStatus(status)
	return &keyPair, nil
}
