// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/pem"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/vouch/internal/errors"
)

// AllowedValidityMonths lists the validity windows accepted for keys and transactions.
var AllowedValidityMonths = []any{1, 3, 6, 12}

// MaxAmountMinor is the largest accepted amount expressed in minor units (cents).
const MaxAmountMinor int64 = 1_000_000_000_000_000

// amountPattern accepts plain decimals only, so decimal never rescales an exponent
// such as 1e20000000.
var amountPattern = regexp.MustCompile(`^[0-9]{1,14}(\.[0-9]{1,16})?$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// ValidityMonths validates that an int is one of AllowedValidityMonths.
var ValidityMonths = validation.In(AllowedValidityMonths...).
	ErrorObject(validation.NewError("validation_validity_months", "must be one of 1, 3, 6 or 12"))

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// PEMBlock returns a rule that checks a string holds a single PEM block of the given type.
func PEMBlock(blockType string) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			block, _ := pem.Decode([]byte(s))
			return block != nil && block.Type == blockType
		},
		validation.NewError("validation_pem", "must be a PEM encoded "+strings.ToLower(blockType)),
	)
}

// Amount validates a positive decimal string with at most two fractional digits
// that fits in MaxAmountMinor once converted to minor units.
var Amount = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := ParseAmountMinor(s)
		return err == nil
	},
	validation.NewError("validation_amount", "must be a positive amount with at most 2 decimal places"),
)

// ParseAmountMinor converts a decimal amount string into minor units.
// "1500", "1500.0" and "1500.00" all yield 150000.
func ParseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || validation.Validate(s, validation.Match(amountPattern)) != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "amount is not a decimal number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "amount is not a decimal number")
	}
	if !d.IsPositive() {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	minor := d.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "amount must have at most 2 decimal places")
	}
	if minor.GreaterThan(decimal.NewFromInt(MaxAmountMinor)) {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "amount is too large")
	}
	return minor.IntPart(), nil
}

// FormatAmountMinor renders minor units as a decimal string with two fractional digits.
func FormatAmountMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
