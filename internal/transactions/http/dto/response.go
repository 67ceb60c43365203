package dto

import (
	"encoding/base64"
	"time"

	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	RecipientID       string     `json:"recipient_id"`
	Amount            string     `json:"amount"`
	ValidityMonths    int        `json:"validity_months"`
	KeyPairID         string     `json:"key_pair_id"`
	PublicKeySnapshot string     `json:"public_key_snapshot"`
	VideoRef          string     `json:"video_ref"`
	Signature         string     `json:"signature"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}

// MapTransactionToResponse converts a domain transaction to an API response.
func MapTransactionToResponse(transaction *transactionsDomain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                transaction.ID.String(),
		OwnerID:           transaction.OwnerID,
		RecipientID:       transaction.RecipientID,
		Amount:            transaction.Amount(),
		ValidityMonths:    transaction.ValidityMonths,
		KeyPairID:         transaction.KeyPairID.String(),
		PublicKeySnapshot: transaction.PublicKeySnapshot,
		VideoRef:          transaction.VideoRef,
		Signature:         base64.StdEncoding.EncodeToString(transaction.Signature),
		Status:            string(transaction.Status),
		CreatedAt:         transaction.CreatedAt,
		VerifiedAt:        transaction.VerifiedAt,
	}
}

// ListTransactionsResponse represents a page of transactions.
type ListTransactionsResponse struct {
	Data []TransactionResponse `json:"data"`
}

// MapTransactionsToListResponse converts domain transactions to a list response.
func MapTransactionsToListResponse(transactions []*transactionsDomain.Transaction) ListTransactionsResponse {
	data := make([]TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		data = append(data, MapTransactionToResponse(transaction))
	}
	return ListTransactionsResponse{Data: data}
}

// VerifyTransactionResponse reports the verification outcome. A mismatch is valid=false.
type VerifyTransactionResponse struct {
	Valid bool `json:"valid"`
}
