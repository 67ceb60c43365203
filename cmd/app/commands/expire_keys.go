package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keysUseCase "github.com/allisson/vouch/internal/keys/usecase"
)

// RunExpireKeys persists EXPIRED on active key pairs whose expiry date has passed.
// Reads already treat such keys as expired, so this only keeps stored statuses tidy.
func RunExpireKeys(
	ctx context.Context,
	keyPairUseCase keysUseCase.KeyPairUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := keyPairUseCase.ExpireStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to expire key pairs: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"expired": count}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Expired %d key pair(s)\n", count)
	}

	logger.Info("key pair expiry completed", slog.Int64("count", count))
	return nil
}
