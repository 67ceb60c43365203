package commands

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	validation "github.com/jellydator/validation"

	"github.com/allisson/vouch/internal/signature"
	"github.com/allisson/vouch/internal/signature/signer"
	customValidation "github.com/allisson/vouch/internal/validation"
)

// SignTransactionInput holds the transaction fields signed on the client.
type SignTransactionInput struct {
	PrivateKeyPath string
	VideoPath      string
	OwnerID        string
	RecipientID    string
	Amount         string
	ValidityMonths int
}

// RunSignTransaction signs a transaction on the client side. It hashes the local video
// to its reference, canonicalizes the payload and signs it with the PEM private key,
// printing the base64 signature to attach to the create request.
func RunSignTransaction(s signer.Signer, writer io.Writer, input SignTransactionInput, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if input.OwnerID == "" || input.RecipientID == "" {
		return fmt.Errorf("owner and recipient are required")
	}

	amountMinor, err := customValidation.ParseAmountMinor(input.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	err = validation.Validate(input.ValidityMonths, validation.Required, customValidation.ValidityMonths)
	if err != nil {
		return fmt.Errorf("invalid validity months: %w", err)
	}

	privateKeyPEM, err := os.ReadFile(input.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read private key: %w", err)
	}

	videoRef, err := hashVideoFile(input.VideoPath)
	if err != nil {
		return err
	}

	payload := signature.Payload{
		OwnerID:        input.OwnerID,
		RecipientID:    input.RecipientID,
		AmountMinor:    amountMinor,
		ValidityMonths: input.ValidityMonths,
		VideoRef:       videoRef,
	}

	sig, err := s.Sign(privateKeyPEM, signature.Canonicalize(payload))
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(sig)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"signature":       encoded,
			"video_ref":       videoRef,
			"owner_id":        input.OwnerID,
			"recipient_id":    input.RecipientID,
			"amount":          customValidation.FormatAmountMinor(amountMinor),
			"validity_months": input.ValidityMonths,
		})
	}

	_, _ = fmt.Fprintf(writer, "Video reference: %s\n", videoRef)
	_, _ = fmt.Fprintf(writer, "Signature: %s\n", encoded)
	return nil
}

// hashVideoFile streams the file at path through SHA-256 and returns its video reference.
func hashVideoFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open video: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to read video: %w", err)
	}
	return signature.VideoRefFromDigest(hash.Sum(nil)), nil
}
