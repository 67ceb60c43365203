// Package domain defines outbox events handed from state changes to notification delivery.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Event types emitted by the engine.
const (
	EventTransactionCreated            = "transaction.created"
	EventTransactionVerified           = "transaction.verified"
	EventTransactionVerificationFailed = "transaction.verification_failed"
	EventKeyPairRevoked                = "key_pair.revoked"
)

// OutboxEvent is written in the same database transaction as the state change it describes.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TransactionEventPayload is the JSON payload of transaction.* events.
type TransactionEventPayload struct {
	TransactionID string `json:"transaction_id"`
	OwnerID       string `json:"owner_id"`
	RecipientID   string `json:"recipient_id"`
	Amount        string `json:"amount"`
	ActorID       string `json:"actor_id,omitempty"`
}

// KeyPairEventPayload is the JSON payload of key_pair.* events.
type KeyPairEventPayload struct {
	KeyPairID string `json:"key_pair_id"`
	OwnerID   string `json:"owner_id"`
}

// NewOutboxEvent creates a pending event with a JSON-encoded payload.
func NewOutboxEvent(eventType string, payload any, now time.Time) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(data),
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
