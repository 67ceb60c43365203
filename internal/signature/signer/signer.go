// Package signer produces RSA-PSS signatures over canonical transaction payloads.
//
// It is meant for the party holding the private key (the sign-transaction CLI
// and tests). Server code paths only depend on signature.Verifier.
package signer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/signature"
)

// Signer signs canonical payloads with a private key.
type Signer interface {
	Sign(privateKeyPEM []byte, payload []byte) ([]byte, error)
}

type rsaPSSSigner struct{}

// NewRSAPSSSigner returns a Signer producing RSA-PSS SHA-256 signatures.
func NewRSAPSSSigner() Signer {
	return &rsaPSSSigner{}
}

func (s *rsaPSSSigner) Sign(privateKeyPEM []byte, payload []byte) ([]byte, error) {
	priv, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPSS(rand.Reader, priv, signature.PSSOptions.Hash, digest[:], signature.PSSOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "failed to sign payload")
	}
	return sig, nil
}

// ParsePrivateKeyPEM decodes a PKCS#8 PRIVATE KEY block holding an RSA key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != signature.PrivateKeyPEMType {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "private key is not a PEM encoded PRIVATE KEY block")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "failed to parse private key")
	}

	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "private key is not an RSA key")
	}
	return priv, nil
}
