package app

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/vouch/internal/config"
	"github.com/allisson/vouch/internal/metrics"
	outboxRepository "github.com/allisson/vouch/internal/outbox/repository"
	transactionsRepository "github.com/allisson/vouch/internal/transactions/repository"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerHost:        "localhost",
		ServerPort:        8080,
		DBDriver:          "postgres",
		LogLevel:          "error",
		AuthJWTSecret:     "test-secret",
		OperationTimeout:  time.Second,
		BlobBucketURL:     "mem://",
		MaxVideoSizeBytes: 1 << 20,
		AuditLogDir:       t.TempDir(),
		AuditLogFile:      "audit.log",
		OutboxInterval:    time.Second,
		OutboxBatchSize:   10,
		OutboxMaxRetries:  3,
	}
}

// withMockDB injects a sqlmock connection so database-backed components can be built.
func withMockDB(t *testing.T, container *Container) *sql.DB {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	dbMock.ExpectClose()
	container.dbInit.Do(func() {
		container.db = db
	})
	return db
}

func TestNewContainer(t *testing.T) {
	cfg := newTestConfig(t)

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
	assert.Nil(t, container.logger)
}

func TestContainer_Logger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			container := NewContainer(&config.Config{LogLevel: level})

			logger := container.Logger()

			require.NotNil(t, logger)
			assert.Same(t, logger, container.Logger())
		})
	}
}

func TestContainer_DBErrorIsSticky(t *testing.T) {
	container := NewContainer(&config.Config{DBDriver: "invalid_driver"})

	_, err := container.DB()
	assert.Error(t, err)

	_, err = container.DB()
	assert.Error(t, err)
}

func TestContainer_IdentityParser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		parser, err := container.IdentityParser()

		require.NoError(t, err)
		assert.NotNil(t, parser)
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.AuthJWTSecret = ""
		container := NewContainer(cfg)

		_, err := container.IdentityParser()

		assert.Error(t, err)
	})
}

func TestContainer_RepositoriesFollowDriver(t *testing.T) {
	t.Run("PostgreSQL", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))
		withMockDB(t, container)

		repo, err := container.TransactionRepository()
		require.NoError(t, err)
		assert.IsType(t, &transactionsRepository.PostgreSQLTransactionRepository{}, repo)

		outbox, err := container.OutboxRepository()
		require.NoError(t, err)
		assert.IsType(t, &outboxRepository.PostgreSQLOutboxEventRepository{}, outbox)
	})

	t.Run("MySQL", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.DBDriver = "mysql"
		container := NewContainer(cfg)
		withMockDB(t, container)

		repo, err := container.TransactionRepository()
		require.NoError(t, err)
		assert.IsType(t, &transactionsRepository.MySQLTransactionRepository{}, repo)
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.DBDriver = "sqlite"
		container := NewContainer(cfg)
		withMockDB(t, container)

		_, err := container.KeyPairRepository()
		assert.Error(t, err)
	})
}

func TestContainer_VideoStore(t *testing.T) {
	t.Run("Success_MemoryBucket", func(t *testing.T) {
		container := NewContainer(newTestConfig(t))

		store, err := container.VideoStore()
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	t.Run("Error_UnknownScheme", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BlobBucketURL = "nope://bucket"
		container := NewContainer(cfg)

		_, err := container.VideoStore()
		assert.Error(t, err)
	})
}

func TestContainer_MetricsDisabled(t *testing.T) {
	container := NewContainer(newTestConfig(t))

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, businessMetrics)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, server)
}

func TestContainer_HTTPServer(t *testing.T) {
	container := NewContainer(newTestConfig(t))
	withMockDB(t, container)
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	server, err := container.HTTPServer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/keys", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	again, err := container.HTTPServer()
	require.NoError(t, err)
	assert.Same(t, server, again)
}

func TestContainer_AuditLogUseCaseNeedsNoDatabase(t *testing.T) {
	container := NewContainer(newTestConfig(t))

	useCase, err := container.AuditLogUseCase()
	require.NoError(t, err)

	files, err := useCase.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestContainer_ShutdownWithoutComponents(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.Background()))
}
