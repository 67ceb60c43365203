// Package domain defines signed transfer authorizations and their verification state machine.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/vouch/internal/signature"
	"github.com/allisson/vouch/internal/validation"
)

// TransactionStatus is the verification state of a transaction.
type TransactionStatus string

const (
	// TransactionStatusPending transactions wait for the recipient's verification.
	TransactionStatusPending TransactionStatus = "pending"
	// TransactionStatusVerified transactions carry a signature that matched. Terminal.
	TransactionStatusVerified TransactionStatus = "verified"
)

// Transaction is a transfer authorization signed client-side over its canonical payload.
type Transaction struct {
	ID                uuid.UUID
	OwnerID           string
	RecipientID       string
	AmountMinor       int64
	ValidityMonths    int
	KeyPairID         uuid.UUID
	PublicKeySnapshot string
	VideoRef          string
	Signature         []byte
	Status            TransactionStatus
	CreatedAt         time.Time
	VerifiedAt        *time.Time
}

// Payload returns the signable fields of the transaction.
func (t *Transaction) Payload() signature.Payload {
	return signature.Payload{
		OwnerID:        t.OwnerID,
		RecipientID:    t.RecipientID,
		AmountMinor:    t.AmountMinor,
		ValidityMonths: t.ValidityMonths,
		VideoRef:       t.VideoRef,
	}
}

// Amount formats AmountMinor as a decimal string with two fractional digits.
func (t *Transaction) Amount() string {
	return validation.FormatAmountMinor(t.AmountMinor)
}

// IsVerified reports whether the transaction reached its terminal state.
func (t *Transaction) IsVerified() bool {
	return t.Status == TransactionStatusVerified
}

// CreateTransactionInput holds everything the owner submits to create a transaction.
// Signature was produced client-side over the canonical payload that includes the
// reference of Video.
type CreateTransactionInput struct {
	OwnerID           string
	RecipientID       string
	Amount            string
	ValidityMonths    int
	KeyPairID         uuid.UUID
	PublicKeySnapshot string
	Signature         []byte
	VideoContentType  string
}
