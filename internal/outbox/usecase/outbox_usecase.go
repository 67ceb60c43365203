// Package usecase polls the outbox and hands pending events to an EventProcessor.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/allisson/vouch/internal/database"
	"github.com/allisson/vouch/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers a single event. A returned error keeps the event pending for retry.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
	now            func() time.Time
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
		now:            time.Now,
	}
}

// Start runs the polling loop until ctx is done. Shutdown is not an error.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return nil
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents retrieves and processes one batch of pending events in a transaction.
// Rows are locked with SKIP LOCKED so concurrent workers never deliver the same event.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", slog.Int("count", len(events)))

		for _, event := range events {
			now := uc.now()
			event.UpdatedAt = now

			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// NotificationProcessor turns transaction events into user notifications. Delivery is
// a structured log line addressed to the party that must act.
type NotificationProcessor struct {
	logger *slog.Logger
}

// NewNotificationProcessor creates a new NotificationProcessor
func NewNotificationProcessor(logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		logger: logger,
	}
}

// Process emits the notification for event. Unknown event types are logged and dropped.
func (p *NotificationProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTransactionCreated,
		domain.EventTransactionVerified,
		domain.EventTransactionVerificationFailed:
		var payload domain.TransactionEventPayload
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			return err
		}

		notify := payload.OwnerID
		message := "your transaction was verified"
		switch event.EventType {
		case domain.EventTransactionCreated:
			notify = payload.RecipientID
			message = "a transaction is waiting for your verification"
		case domain.EventTransactionVerificationFailed:
			message = "a verification attempt on your transaction failed"
		}

		p.logger.InfoContext(ctx, "notification",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("notify", notify),
			slog.String("message", message),
			slog.String("transaction_id", payload.TransactionID),
			slog.String("amount", payload.Amount),
		)
	case domain.EventKeyPairRevoked:
		var payload domain.KeyPairEventPayload
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			return err
		}

		p.logger.InfoContext(ctx, "notification",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("notify", payload.OwnerID),
			slog.String("message", "your key pair was revoked"),
			slog.String("key_pair_id", payload.KeyPairID),
		)
	default:
		p.logger.WarnContext(ctx, "unknown event type", slog.String("event_type", event.EventType))
	}

	return nil
}
