package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
)

func testEvent(action string) auditDomain.Event {
	return auditDomain.Event{
		Actor:   "user-1",
		Service: "keys",
		Action:  action,
		Details: "keyId=1",
		Status:  auditDomain.EventStatusSuccess,
	}
}

func TestChainWriter_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ProducesVerifiableChain", func(t *testing.T) {
		dir := t.TempDir()
		w := NewChainWriter(dir, "audit.log")

		for i := 0; i < 5; i++ {
			require.NoError(t, w.Write(ctx, testEvent("key_pair_generate")))
		}

		line, err := NewLogStore(dir).Verify(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, 0, line)

		data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, 5)
		assert.True(t, strings.HasPrefix(lines[0], "1| "))
		assert.True(t, strings.HasPrefix(lines[4], "5| "))
		assert.Contains(t, lines[0], "prev="+auditDomain.GenesisDigest)
	})

	t.Run("Success_ResumesExistingChain", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, NewChainWriter(dir, "audit.log").Write(ctx, testEvent("first")))
		require.NoError(t, NewChainWriter(dir, "audit.log").Write(ctx, testEvent("second")))

		line, err := NewLogStore(dir).Verify(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, 0, line)

		data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n2| ")
	})

	t.Run("Success_ConcurrentWritesStayChained", func(t *testing.T) {
		dir := t.TempDir()
		w := NewChainWriter(dir, "audit.log")

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, w.Write(ctx, testEvent("transaction_verify")))
			}()
		}
		wg.Wait()

		line, err := NewLogStore(dir).Verify(ctx, "audit.log")
		require.NoError(t, err)
		assert.Equal(t, 0, line)
	})

	t.Run("Success_CreatesDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "audit")
		require.NoError(t, NewChainWriter(dir, "audit.log").Write(ctx, testEvent("x")))
		_, err := os.Stat(filepath.Join(dir, "audit.log"))
		assert.NoError(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write(ctx context.Context, event auditDomain.Event) error {
	return errors.New("disk full")
}

func TestRecorder_Record(t *testing.T) {
	t.Run("Success_WritesEvent", func(t *testing.T) {
		dir := t.TempDir()
		r := NewRecorder(NewChainWriter(dir, "audit.log"), slog.New(slog.DiscardHandler))

		r.Record(context.Background(), testEvent("key_pair_revoke"))

		data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "action=key_pair_revoke")
	})

	t.Run("Success_FailureIsSwallowed", func(t *testing.T) {
		r := NewRecorder(failingWriter{}, slog.New(slog.DiscardHandler))
		assert.NotPanics(t, func() {
			r.Record(context.Background(), testEvent("key_pair_revoke"))
		})
	})

	t.Run("Success_CancelledContextStillRecords", func(t *testing.T) {
		dir := t.TempDir()
		r := NewRecorder(NewChainWriter(dir, "audit.log"), slog.New(slog.DiscardHandler))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r.Record(ctx, testEvent("transaction_verify"))

		_, err := os.Stat(filepath.Join(dir, "audit.log"))
		assert.NoError(t, err)
	})
}
