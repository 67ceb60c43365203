// Package dto provides data transfer objects for audit log HTTP handlers.
package dto

import (
	"time"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

// AuditLogFileResponse describes one audit log file.
type AuditLogFileResponse struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListAuditLogsResponse wraps the audit log files.
type ListAuditLogsResponse struct {
	Data []AuditLogFileResponse `json:"data"`
}

// VerifyAuditLogResponse reports the integrity of an audit log file.
// CorruptedLine is 0 when every line chains correctly.
type VerifyAuditLogResponse struct {
	File          string `json:"file"`
	Intact        bool   `json:"intact"`
	CorruptedLine int    `json:"corrupted_line"`
}

// MapLogFilesToListResponse converts domain log files to the list response.
func MapLogFilesToListResponse(files []auditDomain.LogFile) ListAuditLogsResponse {
	data := make([]AuditLogFileResponse, 0, len(files))
	for _, file := range files {
		data = append(data, AuditLogFileResponse{
			Name:       file.Name,
			Size:       file.Size,
			ModifiedAt: file.ModifiedAt,
		})
	}
	return ListAuditLogsResponse{Data: data}
}

// NewVerifyAuditLogResponse builds the verification result for name.
func NewVerifyAuditLogResponse(name string, corruptedLine int) VerifyAuditLogResponse {
	return VerifyAuditLogResponse{
		File:          name,
		Intact:        corruptedLine == 0,
		CorruptedLine: corruptedLine,
	}
}
