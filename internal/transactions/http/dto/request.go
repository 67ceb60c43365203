// Package dto provides data transfer objects for transaction HTTP requests and responses.
package dto

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/vouch/internal/signature"
	transactionsDomain "github.com/allisson/vouch/internal/transactions/domain"
	customValidation "github.com/allisson/vouch/internal/validation"
)

// VideoFormField is the multipart field carrying the video statement.
const VideoFormField = "video"

// CreateTransactionRequest holds the multipart form fields of a create request.
// The video travels in the VideoFormField file part.
type CreateTransactionRequest struct {
	RecipientID       string `form:"recipient_id"`
	Amount            string `form:"amount"`          // decimal, e.g. "1500.00"
	ValidityMonths    int    `form:"validity_months"` // 1, 3, 6 or 12
	KeyPairID         string `form:"key_pair_id"`
	PublicKeySnapshot string `form:"public_key_snapshot"` // optional
	Signature         string `form:"signature"`           // base64 RSA-PSS signature
}

// Validate checks if the create transaction request is valid.
func (r *CreateTransactionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecipientID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Amount,
			validation.Required,
			customValidation.Amount,
		),
		validation.Field(&r.ValidityMonths,
			validation.Required,
			customValidation.ValidityMonths,
		),
		validation.Field(&r.KeyPairID,
			validation.Required,
			validation.By(func(value interface{}) error {
				if _, err := uuid.Parse(value.(string)); err != nil {
					return validation.NewError("validation_uuid", "must be a valid UUID")
				}
				return nil
			}),
		),
		validation.Field(&r.PublicKeySnapshot,
			customValidation.PEMBlock(signature.PublicKeyPEMType),
		),
		validation.Field(&r.Signature,
			validation.Required,
			customValidation.Base64,
		),
	)
}

// ToInput converts a validated request into the use case input.
func (r *CreateTransactionRequest) ToInput(
	ownerID, videoContentType string,
) (*transactionsDomain.CreateTransactionInput, error) {
	keyPairID, err := uuid.Parse(r.KeyPairID)
	if err != nil {
		return nil, fmt.Errorf("invalid key_pair_id: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}

	return &transactionsDomain.CreateTransactionInput{
		OwnerID:           ownerID,
		RecipientID:       r.RecipientID,
		Amount:            r.Amount,
		ValidityMonths:    r.ValidityMonths,
		KeyPairID:         keyPairID,
		PublicKeySnapshot: r.PublicKeySnapshot,
		Signature:         sig,
		VideoContentType:  videoContentType,
	}, nil
}

// VerifyTransactionRequest carries the public key the recipient checks the signature with.
type VerifyTransactionRequest struct {
	PublicKey string `json:"public_key"`
}

// Validate checks if the verify request is valid. Key parsing is left to verification
// so that unparsable material is reported as invalid_key_material.
func (r *VerifyTransactionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PublicKey,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
