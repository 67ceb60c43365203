package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/allisson/vouch/internal/audit/usecase"
)

// auditLogResult is the verification outcome of one audit log file.
type auditLogResult struct {
	File          string `json:"file"`
	Intact        bool   `json:"intact"`
	CorruptedLine int    `json:"corrupted_line"`
}

// RunVerifyAuditLog checks the hash chain of the named audit log, or of every audit log
// when name is empty. It fails when any file is corrupted so the exit code reflects integrity.
func RunVerifyAuditLog(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	names := []string{name}
	if name == "" {
		files, err := auditLogUseCase.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list audit logs: %w", err)
		}
		names = make([]string, 0, len(files))
		for _, file := range files {
			names = append(names, file.Name)
		}
	}

	results := make([]auditLogResult, 0, len(names))
	corrupted := 0
	for _, fileName := range names {
		line, err := auditLogUseCase.Verify(ctx, fileName)
		if err != nil {
			return fmt.Errorf("failed to verify audit log %s: %w", fileName, err)
		}
		if line > 0 {
			corrupted++
		}
		results = append(results, auditLogResult{File: fileName, Intact: line == 0, CorruptedLine: line})
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"files":  results,
			"passed": corrupted == 0,
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyAuditLogText(writer, results)
	}

	logger.Info("audit log verification completed",
		slog.Int("files", len(results)),
		slog.Int("corrupted", corrupted),
	)

	if corrupted > 0 {
		return fmt.Errorf("integrity check failed: %d corrupted audit log(s)", corrupted)
	}
	return nil
}

func outputVerifyAuditLogText(writer io.Writer, results []auditLogResult) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(writer, "No audit logs found")
		return
	}

	for _, result := range results {
		if result.Intact {
			_, _ = fmt.Fprintf(writer, "%s: intact\n", result.File)
			continue
		}
		_, _ = fmt.Fprintf(writer, "%s: CORRUPTED at line %d\n", result.File, result.CorruptedLine)
	}
}
