// Package http provides HTTP handlers for the transaction ledger.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/vouch/internal/auth/http"
	"github.com/allisson/vouch/internal/blob"
	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/httputil"
	"github.com/allisson/vouch/internal/signature"
	"github.com/allisson/vouch/internal/transactions/http/dto"
	transactionsUseCase "github.com/allisson/vouch/internal/transactions/usecase"
	customValidation "github.com/allisson/vouch/internal/validation"
)

// multipartOverhead is allowed on top of the video size for the form fields and boundaries.
const multipartOverhead = 1 << 20

// TransactionHandler handles HTTP requests for transaction operations on behalf of the caller.
type TransactionHandler struct {
	transactionUseCase transactionsUseCase.TransactionUseCase
	maxVideoSize       int64
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler. maxVideoSize bounds the
// accepted request body together with multipartOverhead.
func NewTransactionHandler(
	transactionUseCase transactionsUseCase.TransactionUseCase,
	maxVideoSize int64,
	logger *slog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
		maxVideoSize:       maxVideoSize,
		logger:             logger,
	}
}

// CreateHandler creates a transaction from a multipart form with a video part.
// POST /v1/transactions - Returns 201 Created.
func (h *TransactionHandler) CreateHandler(c *gin.Context) {
	ownerID, ok := h.actorID(c)
	if !ok {
		return
	}

	if h.maxVideoSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxVideoSize+multipartOverhead)
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.handleBodyError(c, err)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	fileHeader, err := c.FormFile(dto.VideoFormField)
	if err != nil {
		h.handleBodyError(c, err)
		return
	}
	if h.maxVideoSize > 0 && fileHeader.Size > h.maxVideoSize {
		httputil.HandleErrorGin(c, blob.ErrVideoTooLarge, h.logger)
		return
	}

	video, err := fileHeader.Open()
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.WrapIO(err, "failed to open uploaded video"), h.logger)
		return
	}
	defer func() {
		_ = video.Close()
	}()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input, err := req.ToInput(ownerID, contentType)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	transaction, err := h.transactionUseCase.Create(c.Request.Context(), input, video)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Location", "/v1/transactions/"+transaction.ID.String())
	c.JSON(http.StatusCreated, dto.MapTransactionToResponse(transaction))
}

// ListOwnedHandler lists the transactions created by the caller.
// GET /v1/transactions?offset=0&limit=50 - Returns 200 OK.
func (h *TransactionHandler) ListOwnedHandler(c *gin.Context) {
	ownerID, ok := h.actorID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	transactions, err := h.transactionUseCase.ListOwned(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionsToListResponse(transactions))
}

// ListToVerifyHandler lists the pending transactions addressed to the caller.
// GET /v1/transactions/to-verify?offset=0&limit=50 - Returns 200 OK.
func (h *TransactionHandler) ListToVerifyHandler(c *gin.Context) {
	recipientID, ok := h.actorID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	transactions, err := h.transactionUseCase.ListToVerify(c.Request.Context(), recipientID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionsToListResponse(transactions))
}

// GetHandler returns a transaction the caller owns or must verify.
// GET /v1/transactions/:id - Returns 200 OK, 403 for other parties, 404 when absent.
func (h *TransactionHandler) GetHandler(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	transactionID, ok := h.transactionID(c)
	if !ok {
		return
	}

	transaction, err := h.transactionUseCase.Get(c.Request.Context(), transactionID, actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionToResponse(transaction))
}

// VerifyHandler checks the stored signature with the supplied public key.
// POST /v1/transactions/:id/verify - Returns 200 OK with {"valid": bool}.
func (h *TransactionHandler) VerifyHandler(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	transactionID, ok := h.transactionID(c)
	if !ok {
		return
	}

	var req dto.VerifyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	valid, err := h.transactionUseCase.Verify(c.Request.Context(), transactionID, actorID, req.PublicKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyTransactionResponse{Valid: valid})
}

// VideoHandler streams the video statement bound to a transaction.
// GET /v1/transactions/:id/video - Returns 200 OK with the raw video bytes.
func (h *TransactionHandler) VideoHandler(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	transactionID, ok := h.transactionID(c)
	if !ok {
		return
	}

	reader, attrs, err := h.transactionUseCase.OpenVideo(c.Request.Context(), transactionID, actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	contentType := attrs.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, attrs.Size, contentType, reader, map[string]string{
		"Cache-Control": "private, no-store",
		"ETag":          `"` + strings.TrimPrefix(attrs.Ref, signature.VideoRefPrefix) + `"`,
	})
}

func (h *TransactionHandler) handleBodyError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.HandleErrorGin(c, blob.ErrVideoTooLarge, h.logger)
		return
	}
	if errors.Is(err, http.ErrMissingFile) {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("%s: file part is required", dto.VideoFormField), h.logger)
		return
	}
	httputil.HandleValidationErrorGin(c, err, h.logger)
}

func (h *TransactionHandler) actorID(c *gin.Context) (string, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", false
	}
	return identity.UserID, true
}

func (h *TransactionHandler) transactionID(c *gin.Context) (uuid.UUID, bool) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid transaction ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return transactionID, true
}
