package dto

import (
	"strings"
	"time"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	"github.com/allisson/vouch/internal/signature"
)

// KeyPairResponse represents a key pair in API responses. Status is the effective status.
type KeyPairResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	KeyName     string     `json:"key_name"`
	PublicKey   string     `json:"public_key"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// MapKeyPairToResponse converts a domain key pair to an API response.
func MapKeyPairToResponse(keyPair *keysDomain.KeyPair) KeyPairResponse {
	fingerprint, _ := signature.Fingerprint(keyPair.PublicKey)
	return KeyPairResponse{
		ID:          keyPair.ID.String(),
		OwnerID:     keyPair.OwnerID,
		KeyName:     keyPair.KeyName,
		PublicKey:   keyPair.PublicKey,
		Fingerprint: fingerprint,
		Status:      string(keyPair.Status),
		ExpiresAt:   keyPair.ExpiresAt,
		CreatedAt:   keyPair.CreatedAt,
		RevokedAt:   keyPair.RevokedAt,
	}
}

// GeneratedKeyPairResponse is returned once, on creation.
// SECURITY: PrivateKey is never stored and cannot be retrieved again.
type GeneratedKeyPairResponse struct {
	KeyPairResponse
	PrivateKey string `json:"private_key"`
}

// MapGeneratedKeyPairToResponse converts a freshly generated key pair to an API response.
func MapGeneratedKeyPairToResponse(generated *keysDomain.GeneratedKeyPair) GeneratedKeyPairResponse {
	return GeneratedKeyPairResponse{
		KeyPairResponse: MapKeyPairToResponse(generated.KeyPair),
		PrivateKey:      generated.PrivateKeyPEM,
	}
}

// ListKeyPairsResponse represents a paginated list of key pairs in API responses.
type ListKeyPairsResponse struct {
	Data []KeyPairResponse `json:"data"`
}

// MapKeyPairsToListResponse converts a slice of domain key pairs to a list response.
func MapKeyPairsToListResponse(keyPairs []*keysDomain.KeyPair) ListKeyPairsResponse {
	data := make([]KeyPairResponse, 0, len(keyPairs))
	for _, kp := range keyPairs {
		data = append(data, MapKeyPairToResponse(kp))
	}
	return ListKeyPairsResponse{Data: data}
}

// PrivateKeyFilename returns a safe attachment name for the private key download.
func PrivateKeyFilename(keyName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(keyName))
	name = strings.TrimLeft(name, ".")
	if strings.Trim(name, "_") == "" {
		name = "private_key"
	}
	return name + ".pem"
}
