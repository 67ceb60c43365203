package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	transactionsUseCase "github.com/allisson/vouch/internal/transactions/usecase"
)

// RunCleanOrphanVideos deletes stored videos that no transaction references. Videos
// younger than olderThan are kept because their transaction may still be committing.
func RunCleanOrphanVideos(
	ctx context.Context,
	transactionUseCase transactionsUseCase.TransactionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	olderThan time.Duration,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if olderThan < 0 {
		return fmt.Errorf("older-than must not be negative, got: %s", olderThan)
	}

	logger.Info("cleaning orphan videos",
		slog.Duration("older_than", olderThan),
		slog.Bool("dry_run", dryRun),
	)

	refs, err := transactionUseCase.CleanOrphanVideos(ctx, olderThan, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean orphan videos: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"count":      len(refs),
			"video_refs": refs,
			"dry_run":    dryRun,
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputCleanOrphanVideosText(writer, refs, dryRun)
	}

	logger.Info("orphan video cleanup completed",
		slog.Int("count", len(refs)),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}

func outputCleanOrphanVideosText(writer io.Writer, refs []string, dryRun bool) {
	verb := "Deleted"
	if dryRun {
		verb = "Dry-run mode: would delete"
	}
	_, _ = fmt.Fprintf(writer, "%s %d orphan video(s)\n", verb, len(refs))
	for _, ref := range refs {
		_, _ = fmt.Fprintf(writer, "  - %s\n", ref)
	}
}
