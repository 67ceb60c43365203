package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/allisson/vouch/internal/signature"
)

// RSAKeyGenerator generates RSA key pairs of a fixed modulus size.
type RSAKeyGenerator struct {
	bits int
}

// NewRSAKeyGenerator creates a generator for bits-sized RSA keys (minimum 2048).
func NewRSAKeyGenerator(bits int) *RSAKeyGenerator {
	if bits < signature.MinRSAKeyBits {
		bits = signature.MinRSAKeyBits
	}
	return &RSAKeyGenerator{bits: bits}
}

// Generate creates a new RSA key pair.
func (g *RSAKeyGenerator) Generate() (string, string, error) {
	priv, err := rsa.GenerateKey(rand.Reader, g.bits)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate rsa key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal private key: %w", err)
	}

	publicPEM, err := signature.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: signature.PrivateKeyPEMType, Bytes: privDER})
	return publicPEM, string(privatePEM), nil
}
