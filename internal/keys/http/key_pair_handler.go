// Package http provides HTTP handlers for key pair lifecycle management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/vouch/internal/auth/http"
	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/httputil"
	"github.com/allisson/vouch/internal/keys/http/dto"
	keysUseCase "github.com/allisson/vouch/internal/keys/usecase"
	customValidation "github.com/allisson/vouch/internal/validation"
)

// KeyPairHandler handles HTTP requests for key pair operations on behalf of the caller.
type KeyPairHandler struct {
	keyPairUseCase keysUseCase.KeyPairUseCase
	logger         *slog.Logger
}

// NewKeyPairHandler creates a new key pair handler with required dependencies.
func NewKeyPairHandler(keyPairUseCase keysUseCase.KeyPairUseCase, logger *slog.Logger) *KeyPairHandler {
	return &KeyPairHandler{
		keyPairUseCase: keyPairUseCase,
		logger:         logger,
	}
}

// GenerateHandler creates a key pair for the caller.
// POST /v1/keys - Returns 201 Created with the private key, exactly once.
// With ?download=true the private key PEM is returned as an attachment instead.
func (h *KeyPairHandler) GenerateHandler(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req dto.GenerateKeyPairRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	req.KeyName = strings.TrimSpace(req.KeyName)

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	download, _ := strconv.ParseBool(c.DefaultQuery("download", "false"))

	generated, err := h.keyPairUseCase.Generate(
		c.Request.Context(),
		ownerID,
		req.KeyName,
		req.ValidityMonths,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Location", "/v1/keys/"+generated.KeyPair.ID.String())

	if download {
		c.Header(
			"Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, dto.PrivateKeyFilename(generated.KeyPair.KeyName)),
		)
		c.Data(http.StatusCreated, "application/x-pem-file", []byte(generated.PrivateKeyPEM))
		return
	}

	c.JSON(http.StatusCreated, dto.MapGeneratedKeyPairToResponse(generated))
}

// ListHandler lists every key of the caller with its effective status.
// GET /v1/keys?offset=0&limit=50 - Returns 200 OK.
func (h *KeyPairHandler) ListHandler(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	keyPairs, err := h.keyPairUseCase.List(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyPairsToListResponse(keyPairs))
}

// ListActiveHandler lists the caller's keys that can sign right now.
// GET /v1/keys/active?offset=0&limit=50 - Returns 200 OK.
func (h *KeyPairHandler) ListActiveHandler(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	keyPairs, err := h.keyPairUseCase.ListActive(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyPairsToListResponse(keyPairs))
}

// GetHandler returns one of the caller's keys.
// GET /v1/keys/:id - Returns 200 OK, 403 for another owner's key, 404 when absent.
func (h *KeyPairHandler) GetHandler(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	keyPairID, ok := h.keyPairID(c)
	if !ok {
		return
	}

	keyPair, err := h.keyPairUseCase.Get(c.Request.Context(), keyPairID, ownerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyPairToResponse(keyPair))
}

// RevokeHandler revokes one of the caller's ACTIVE keys.
// POST /v1/keys/:id/revoke - Returns 204 No Content, 409 when the key is not ACTIVE.
func (h *KeyPairHandler) RevokeHandler(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	keyPairID, ok := h.keyPairID(c)
	if !ok {
		return
	}

	if err := h.keyPairUseCase.Revoke(c.Request.Context(), keyPairID, ownerID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *KeyPairHandler) ownerID(c *gin.Context) (string, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", false
	}
	return identity.UserID, true
}

func (h *KeyPairHandler) keyPairID(c *gin.Context) (uuid.UUID, bool) {
	keyPairID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid key pair ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return keyPairID, true
}
