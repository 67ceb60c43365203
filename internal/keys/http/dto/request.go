// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	customValidation "github.com/allisson/vouch/internal/validation"
)

// GenerateKeyPairRequest contains the parameters for generating a key pair.
type GenerateKeyPairRequest struct {
	KeyName        string `json:"key_name"`
	ValidityMonths int    `json:"validity_months"` // 1, 3, 6 or 12
}

// Validate checks if the generate key pair request is valid.
func (r *GenerateKeyPairRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.KeyName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, keysDomain.MaxKeyNameLength),
		),
		validation.Field(&r.ValidityMonths,
			validation.Required,
			customValidation.ValidityMonths,
		),
	)
}
