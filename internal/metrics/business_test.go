package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(t)

	m, err := NewBusinessMetrics(provider.MeterProvider(), "vouch")
	require.NoError(t, err)

	Observe(ctx, m, "transactions", "transaction_verify", time.Now().Add(-50*time.Millisecond), StatusInvalid)
	Observe(ctx, m, "keys", "key_pair_generate", time.Now(), StatusOf(nil))
	m.RecordOperation(ctx, "audit", "audit_log_verify", StatusCorrupted)

	body := scrape(t, provider)
	assert.Contains(t, body, "vouch_operations_total")
	assert.Contains(t, body, "vouch_operation_duration_seconds")
	assert.Contains(t, body, `operation="transaction_verify"`)
	assert.Contains(t, body, `status="invalid"`)
	assert.Contains(t, body, `status="corrupted"`)
	assert.Contains(t, body, `domain="keys"`)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusError, StatusOf(errors.New("boom")))
}

func TestNoOpBusinessMetrics(t *testing.T) {
	m := NewNoOpBusinessMetrics()

	assert.NotPanics(t, func() {
		Observe(context.Background(), m, "outbox", "outbox_process", time.Now(), StatusSuccess)
	})
}
