package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

func TestMapLogFilesToListResponse(t *testing.T) {
	modifiedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Success_MapsFiles", func(t *testing.T) {
		resp := MapLogFilesToListResponse([]auditDomain.LogFile{
			{Name: "audit.log", Size: 42, ModifiedAt: modifiedAt},
		})

		assert.Len(t, resp.Data, 1)
		assert.Equal(t, "audit.log", resp.Data[0].Name)
		assert.Equal(t, int64(42), resp.Data[0].Size)
		assert.Equal(t, modifiedAt, resp.Data[0].ModifiedAt)
	})

	t.Run("Success_EmptyIsNotNil", func(t *testing.T) {
		resp := MapLogFilesToListResponse(nil)

		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})
}

func TestNewVerifyAuditLogResponse(t *testing.T) {
	intact := NewVerifyAuditLogResponse("audit.log", 0)
	assert.True(t, intact.Intact)
	assert.Equal(t, 0, intact.CorruptedLine)

	corrupted := NewVerifyAuditLogResponse("audit.log", 7)
	assert.False(t, corrupted.Intact)
	assert.Equal(t, 7, corrupted.CorruptedLine)
	assert.Equal(t, "audit.log", corrupted.File)
}
