package service

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	apperrors "github.com/allisson/vouch/internal/errors"
)

// ChainWriter appends chained lines to a single audit log file. One ChainWriter
// must own a file; concurrent appends through it are serialized.
type ChainWriter struct {
	path string
	now  func() time.Time

	mu         sync.Mutex
	loaded     bool
	seq        int
	lastDigest string
}

// NewChainWriter creates a writer appending to dir/fileName.
func NewChainWriter(dir, fileName string) *ChainWriter {
	return &ChainWriter{
		path: filepath.Join(dir, fileName),
		now:  time.Now,
	}
}

// Write appends event as the next line of the chain.
func (w *ChainWriter) Write(ctx context.Context, event auditDomain.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !w.loaded {
		if err := w.load(); err != nil {
			return err
		}
	}

	line, digest := auditDomain.FormatLine(w.seq+1, w.now(), event, w.lastDigest)

	if err := os.MkdirAll(filepath.Dir(w.path), 0o750); err != nil {
		return apperrors.WrapIO(err, "failed to create audit log directory")
	}
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o640) // #nosec G304
	if err != nil {
		return apperrors.WrapIO(err, "failed to open audit log for append")
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return apperrors.WrapIO(err, "failed to append audit log line")
	}
	if err := f.Close(); err != nil {
		return apperrors.WrapIO(err, "failed to close audit log")
	}

	w.seq++
	w.lastDigest = digest
	return nil
}

// load recovers the sequence number and last digest from an existing file.
func (w *ChainWriter) load() error {
	data, err := os.ReadFile(w.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.WrapIO(err, "failed to read audit log")
	}

	w.seq = 0
	w.lastDigest = auditDomain.GenesisDigest
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		w.seq++
		if _, _, hash, ok := auditDomain.ParseLine(line); ok {
			w.lastDigest = hash
		}
	}
	w.loaded = true
	return nil
}

// Writer appends audit events.
type Writer interface {
	Write(ctx context.Context, event auditDomain.Event) error
}

// Recorder records audit events without failing the calling operation.
type Recorder struct {
	writer Writer
	logger *slog.Logger
}

// NewRecorder wraps writer so that append failures are logged instead of returned.
func NewRecorder(writer Writer, logger *slog.Logger) *Recorder {
	return &Recorder{writer: writer, logger: logger}
}

// Record appends event, logging any failure.
func (r *Recorder) Record(ctx context.Context, event auditDomain.Event) {
	// Audit lines outlive the request context.
	if err := r.writer.Write(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Error("failed to write audit log",
			slog.String("action", event.Action),
			slog.String("actor", event.Actor),
			slog.Any("error", err),
		)
	}
}
