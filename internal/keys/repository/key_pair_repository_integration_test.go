package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	keysUseCase "github.com/allisson/vouch/internal/keys/usecase"
	"github.com/allisson/vouch/internal/testutil"
)

func TestKeyPairRepository_Integration(t *testing.T) {
	drivers := []struct {
		name  string
		setup func(t *testing.T) *sql.DB
		repo  func(db *sql.DB) keysUseCase.KeyPairRepository
	}{
		{
			name:  "postgres",
			setup: testutil.SetupPostgresDB,
			repo:  func(db *sql.DB) keysUseCase.KeyPairRepository { return NewPostgreSQLKeyPairRepository(db) },
		},
		{
			name:  "mysql",
			setup: testutil.SetupMySQLDB,
			repo:  func(db *sql.DB) keysUseCase.KeyPairRepository { return NewMySQLKeyPairRepository(db) },
		},
	}

	for _, driver := range drivers {
		t.Run(driver.name, func(t *testing.T) {
			db := driver.setup(t)
			defer testutil.TeardownDB(t, db)

			ctx := context.Background()
			repo := driver.repo(db)
			now := time.Now().UTC().Truncate(time.Second)

			active := createTestKeyPair()
			active.CreatedAt = now
			active.ExpiresAt = now.AddDate(0, 12, 0)
			require.NoError(t, repo.Create(ctx, active))

			stale := createTestKeyPair()
			stale.CreatedAt = now.AddDate(0, -2, 0)
			stale.ExpiresAt = now.AddDate(0, -1, 0)
			require.NoError(t, repo.Create(ctx, stale))

			listed, err := repo.ListActiveByOwner(ctx, active.OwnerID, now, 0, 50)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, active.ID, listed[0].ID)

			expired, err := repo.ExpireStale(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, int64(1), expired)

			stored, err := repo.Get(ctx, stale.ID)
			require.NoError(t, err)
			assert.Equal(t, keysDomain.KeyStatusExpired, stored.Status)

			revoked, err := repo.Revoke(ctx, active.ID, now)
			require.NoError(t, err)
			assert.True(t, revoked)

			revoked, err = repo.Revoke(ctx, active.ID, now)
			require.NoError(t, err)
			assert.False(t, revoked)

			stored, err = repo.Get(ctx, active.ID)
			require.NoError(t, err)
			assert.Equal(t, keysDomain.KeyStatusRevoked, stored.Status)
			require.NotNil(t, stored.RevokedAt)

			all, err := repo.ListByOwner(ctx, active.OwnerID, 0, 50)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}
