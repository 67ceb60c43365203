// Package http provides the API server, its router and the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/vouch/internal/audit/http"
	authDomain "github.com/allisson/vouch/internal/auth/domain"
	authHTTP "github.com/allisson/vouch/internal/auth/http"
	authService "github.com/allisson/vouch/internal/auth/service"
	"github.com/allisson/vouch/internal/config"
	keysHTTP "github.com/allisson/vouch/internal/keys/http"
	"github.com/allisson/vouch/internal/metrics"
	transactionsHTTP "github.com/allisson/vouch/internal/transactions/http"
)

// transferTimeout bounds reading a request and writing a response. Video uploads and
// downloads stream through the API, so it is far longer than a JSON round trip.
const transferTimeout = 10 * time.Minute

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new API server. SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       transferTimeout,
			WriteTimeout:      transferTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and every API route.
//
// Public: GET /health, GET /ready.
// Authenticated (bearer token, rate limited per identity):
//
//	/v1/keys          key pair lifecycle of the caller
//	/v1/transactions  ledger operations of the caller
//	/v1/audit/logs    audit log inspection, admin role only
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	identityParser authService.IdentityParser,
	keyPairHandler *keysHTTP.KeyPairHandler,
	transactionHandler *transactionsHTTP.TransactionHandler,
	auditLogHandler *auditHTTP.AuditLogHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(identityParser, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.Use(OperationTimeoutMiddleware(cfg.OperationTimeout))

	keys := v1.Group("/keys")
	{
		keys.POST("", keyPairHandler.GenerateHandler)
		keys.GET("", keyPairHandler.ListHandler)
		keys.GET("/active", keyPairHandler.ListActiveHandler)
		keys.GET("/:id", keyPairHandler.GetHandler)
		keys.POST("/:id/revoke", keyPairHandler.RevokeHandler)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", transactionHandler.CreateHandler)
		transactions.GET("", transactionHandler.ListOwnedHandler)
		transactions.GET("/to-verify", transactionHandler.ListToVerifyHandler)
		transactions.GET("/:id", transactionHandler.GetHandler)
		transactions.GET("/:id/video", transactionHandler.VideoHandler)
		transactions.POST("/:id/verify", transactionHandler.VerifyHandler)
	}

	audit := v1.Group("/audit/logs")
	audit.Use(authHTTP.RequireRole(authDomain.RoleAdmin, s.logger))
	{
		audit.GET("", auditLogHandler.ListHandler)
		audit.GET("/:name", auditLogHandler.DownloadHandler)
		audit.POST("/:name/verify", auditLogHandler.VerifyHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized: call SetupRouter first")
	}
	s.server.Handler = s.router
	return listenAndServe(s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
