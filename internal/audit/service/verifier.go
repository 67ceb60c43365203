// Package service implements audit log file storage, chained writing and verification.
package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	auditDomain "github.com/allisson/vouch/internal/audit/domain"
	apperrors "github.com/allisson/vouch/internal/errors"
)

// logFileExt is the extension of files listed as audit logs.
const logFileExt = ".log"

// ctxCheckInterval is how many lines are verified between context checks.
const ctxCheckInterval = 1024

// LogStore reads audit log files from a single directory.
type LogStore struct {
	dir string
}

// NewLogStore creates a LogStore rooted at dir.
func NewLogStore(dir string) *LogStore {
	return &LogStore{dir: dir}
}

// List returns the *.log files of the audit directory sorted by name.
// A missing directory yields an empty list.
func (s *LogStore) List(ctx context.Context) ([]auditDomain.LogFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []auditDomain.LogFile{}, nil
		}
		return nil, apperrors.WrapIO(err, "failed to read audit log directory")
	}

	files := make([]auditDomain.LogFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), logFileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, apperrors.WrapIO(err, "failed to stat audit log")
		}
		files = append(files, auditDomain.LogFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open opens the named audit log for reading. The caller must close the reader.
func (s *LogStore) Open(ctx context.Context, name string) (io.ReadCloser, *auditDomain.LogFile, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path) // #nosec G304 -- name is validated by resolve
	if err != nil {
		return nil, nil, mapOpenError(err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, apperrors.WrapIO(err, "failed to stat audit log")
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, auditDomain.ErrAuditLogNotFound
	}

	return f, &auditDomain.LogFile{Name: name, Size: info.Size(), ModifiedAt: info.ModTime().UTC()}, nil
}

// Verify scans the named file once from the first line and returns the 1-indexed
// number of the first line whose chained digest does not match, or 0 when every
// line matches. The file is only read.
func (s *LogStore) Verify(ctx context.Context, name string) (int, error) {
	rc, _, err := s.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = rc.Close()
	}()

	return VerifyChain(ctx, rc)
}

// VerifyChain verifies a chained audit log read from r. See LogStore.Verify.
func VerifyChain(ctx context.Context, r io.Reader) (int, error) {
	reader := bufio.NewReader(r)
	prev := auditDomain.GenesisDigest
	lineNumber := 0

	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return 0, apperrors.WrapIO(readErr, "failed to read audit log")
		}
		if raw == "" && errors.Is(readErr, io.EOF) {
			return 0, nil
		}

		lineNumber++
		if lineNumber%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, apperrors.WrapIO(err, "audit log verification interrupted")
			}
		}

		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		dataPart, linePrev, lineHash, ok := auditDomain.ParseLine(line)
		if !ok || linePrev != prev || lineHash != auditDomain.ChainDigest(prev, dataPart) {
			return lineNumber, nil
		}
		prev = lineHash

		if errors.Is(readErr, io.EOF) {
			return 0, nil
		}
	}
}

// resolve maps a bare file name to a path inside the audit directory.
func (s *LogStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", auditDomain.ErrInvalidAuditLogName
	}
	return filepath.Join(s.dir, name), nil
}

func mapOpenError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return auditDomain.ErrAuditLogNotFound
	}
	return apperrors.WrapIO(err, "failed to open audit log")
}
