package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	auditHTTP "github.com/allisson/vouch/internal/audit/http"
	auditMocks "github.com/allisson/vouch/internal/audit/usecase/mocks"
	authDomain "github.com/allisson/vouch/internal/auth/domain"
	authMocks "github.com/allisson/vouch/internal/auth/http/mocks"
	"github.com/allisson/vouch/internal/config"
	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	keysHTTP "github.com/allisson/vouch/internal/keys/http"
	keysMocks "github.com/allisson/vouch/internal/keys/usecase/mocks"
	"github.com/allisson/vouch/internal/metrics"
	transactionsHTTP "github.com/allisson/vouch/internal/transactions/http"
	transactionsMocks "github.com/allisson/vouch/internal/transactions/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestServer() *Server {
	return NewServer(nil, "localhost", 8080, discardLogger())
}

type routerDeps struct {
	parser       *authMocks.MockIdentityParser
	keys         *keysMocks.MockKeyPairUseCase
	transactions *transactionsMocks.MockTransactionUseCase
	audit        *auditMocks.MockAuditLogUseCase
}

func newFullRouter(t *testing.T, cfg *config.Config) (http.Handler, *routerDeps) {
	t.Helper()
	logger := discardLogger()
	deps := &routerDeps{
		parser:       &authMocks.MockIdentityParser{},
		keys:         &keysMocks.MockKeyPairUseCase{},
		transactions: &transactionsMocks.MockTransactionUseCase{},
		audit:        &auditMocks.MockAuditLogUseCase{},
	}

	server := createTestServer()
	server.SetupRouter(
		context.Background(),
		cfg,
		deps.parser,
		keysHTTP.NewKeyPairHandler(deps.keys, logger),
		transactionsHTTP.NewTransactionHandler(deps.transactions, 1<<20, logger),
		auditHTTP.NewAuditLogHandler(deps.audit, logger),
		nil,
	)
	return server.GetHandler(), deps
}

func defaultTestConfig() *config.Config {
	return &config.Config{OperationTimeout: time.Second}
}

func sendRequest(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler(t *testing.T) {
	t.Run("NotReady_NilDB", func(t *testing.T) {
		server := createTestServer()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_ready", response["status"])
		components, ok := response["components"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "error", components["database"])
	})

	t.Run("Ready", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()
		dbMock.ExpectPing()

		server := NewServer(db, "localhost", 8080, discardLogger())
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := sendRequest(router, http.MethodGet, "/test", "")

	assert.Equal(t, http.StatusOK, w.Code)
	requestID, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, requestID)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := sendRequest(router, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOperationTimeoutMiddleware(t *testing.T) {
	t.Run("SetsDeadline", func(t *testing.T) {
		router := gin.New()
		router.Use(OperationTimeoutMiddleware(time.Second))
		router.GET("/test", func(c *gin.Context) {
			deadline, ok := c.Request.Context().Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
			c.Status(http.StatusNoContent)
		})

		w := sendRequest(router, http.MethodGet, "/test", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("DisabledWhenZero", func(t *testing.T) {
		router := gin.New()
		router.Use(OperationTimeoutMiddleware(0))
		router.GET("/test", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.Status(http.StatusNoContent)
		})

		w := sendRequest(router, http.MethodGet, "/test", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRouter_PublicEndpoints(t *testing.T) {
	handler, _ := newFullRouter(t, defaultTestConfig())

	assert.Equal(t, http.StatusOK, sendRequest(handler, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, sendRequest(handler, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusNotFound, sendRequest(handler, http.MethodGet, "/nonexistent", "").Code)
	assert.Equal(t, http.StatusNotFound, sendRequest(handler, http.MethodGet, "/metrics", "").Code)
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	handler, deps := newFullRouter(t, defaultTestConfig())

	w := sendRequest(handler, http.MethodGet, "/v1/keys", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	deps.keys.AssertNotCalled(t, "List")
}

func TestRouter_KeysRouteForUser(t *testing.T) {
	handler, deps := newFullRouter(t, defaultTestConfig())
	deps.parser.On("Parse", "user-token").
		Return(&authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}, nil)
	deps.keys.On("List", mock.Anything, "user-1", 0, 50).Return([]*keysDomain.KeyPair{}, nil).Once()

	w := sendRequest(handler, http.MethodGet, "/v1/keys", "user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	deps.keys.AssertExpectations(t)
}

func TestRouter_AuditRequiresAdmin(t *testing.T) {
	handler, deps := newFullRouter(t, defaultTestConfig())
	deps.parser.On("Parse", "user-token").
		Return(&authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}, nil)
	deps.parser.On("Parse", "admin-token").
		Return(&authDomain.Identity{UserID: "admin-1", Role: authDomain.RoleAdmin}, nil)
	deps.audit.On("List", mock.Anything).Return([]auditDomain.LogFile{}, nil).Once()

	forbidden := sendRequest(handler, http.MethodGet, "/v1/audit/logs", "user-token")
	allowed := sendRequest(handler, http.MethodGet, "/v1/audit/logs", "admin-token")

	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	assert.Equal(t, http.StatusOK, allowed.Code)
	deps.audit.AssertNumberOfCalls(t, "List", 1)
}

func TestRouter_TransactionsToVerifyIsNotAnID(t *testing.T) {
	handler, deps := newFullRouter(t, defaultTestConfig())
	deps.parser.On("Parse", "user-token").
		Return(&authDomain.Identity{UserID: "recipient-1", Role: authDomain.RoleUser}, nil)
	deps.transactions.On("ListToVerify", mock.Anything, "recipient-1", 0, 50).
		Return(nil, nil).
		Once()

	w := sendRequest(handler, http.MethodGet, "/v1/transactions/to-verify", "user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	deps.transactions.AssertExpectations(t)
}

func TestServer_StartRequiresRouter(t *testing.T) {
	server := createTestServer()

	err := server.Start(context.Background())

	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "127.0.0.1", 0, discardLogger())
	server.router = gin.New()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := sendRequest(metricsServer.GetHandler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = sendRequest(metricsServer.GetHandler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = sendRequest(metricsServer.GetHandler(), http.MethodGet, "/v1/keys", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
