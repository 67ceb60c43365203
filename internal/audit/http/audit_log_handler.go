// Package http provides HTTP handlers for audit log inspection.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/vouch/internal/audit/http/dto"
	auditUseCase "github.com/allisson/vouch/internal/audit/usecase"
	"github.com/allisson/vouch/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log files. Routes are expected
// to be mounted behind an admin role check.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditLogUseCase auditUseCase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler lists the audit log files.
// GET /v1/audit/logs - Returns 200 OK.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	files, err := h.auditLogUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLogFilesToListResponse(files))
}

// DownloadHandler streams the raw bytes of an audit log file.
// GET /v1/audit/logs/:name - Returns 200 OK, 404 when the file is absent.
func (h *AuditLogHandler) DownloadHandler(c *gin.Context) {
	name := c.Param("name")

	reader, file, err := h.auditLogUseCase.Open(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			h.logger.Error("failed to close audit log", slog.String("file", name), slog.Any("error", closeErr))
		}
	}()

	c.DataFromReader(
		http.StatusOK,
		file.Size,
		"text/plain; charset=utf-8",
		reader,
		map[string]string{
			"Cache-Control":       "no-store",
			"Content-Disposition": fmt.Sprintf(`attachment; filename=%s`, strconv.Quote(file.Name)),
		},
	)
}

// VerifyHandler checks the hash chain of an audit log file.
// POST /v1/audit/logs/:name/verify - Returns 200 OK with the first corrupted line, 0 when intact.
func (h *AuditLogHandler) VerifyHandler(c *gin.Context) {
	name := c.Param("name")

	line, err := h.auditLogUseCase.Verify(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewVerifyAuditLogResponse(name, line))
}
