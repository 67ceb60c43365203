package signature

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
)

// Verifier checks signatures over canonical payloads.
type Verifier interface {
	// Verify reports whether signature is valid for payload under publicKeyPEM.
	// A malformed or mismatched signature yields false with a nil error; only an
	// unparsable public key is an error (ErrCrypto).
	Verify(publicKeyPEM []byte, payload []byte, signature []byte) (bool, error)
}

// PSSOptions are the RSA-PSS parameters shared by signing and verification.
var PSSOptions = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}

type rsaPSSVerifier struct{}

// NewRSAPSSVerifier returns a Verifier for RSA-PSS SHA-256 signatures.
func NewRSAPSSVerifier() Verifier {
	return &rsaPSSVerifier{}
}

func (v *rsaPSSVerifier) Verify(publicKeyPEM []byte, payload []byte, signature []byte) (bool, error) {
	pub, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false, err
	}
	if len(signature) == 0 {
		return false, nil
	}

	digest := sha256.Sum256(payload)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature, PSSOptions); err != nil {
		return false, nil
	}
	return true, nil
}
