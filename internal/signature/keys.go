package signature

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"golang.org/x/crypto/ssh"

	apperrors "github.com/allisson/vouch/internal/errors"
)

const (
	// PublicKeyPEMType is the PEM block type of PKIX encoded public keys.
	PublicKeyPEMType = "PUBLIC KEY"
	// PrivateKeyPEMType is the PEM block type of PKCS#8 encoded private keys.
	PrivateKeyPEMType = "PRIVATE KEY"
	// MinRSAKeyBits is the smallest RSA modulus accepted for signing or verification.
	MinRSAKeyBits = 2048
)

// ParsePublicKeyPEM decodes a PEM encoded PKIX RSA public key.
// Any failure is reported as ErrCrypto.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != PublicKeyPEMType {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "public key is not a PEM encoded PUBLIC KEY block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "failed to parse public key")
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "public key is not an RSA key")
	}
	if rsaPub.N.BitLen() < MinRSAKeyBits {
		return nil, apperrors.Wrap(apperrors.ErrCrypto, "public key is shorter than 2048 bits")
	}
	return rsaPub, nil
}

// EncodePublicKeyPEM encodes pub as a PKIX PUBLIC KEY block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCrypto, "failed to marshal public key")
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: PublicKeyPEMType, Bytes: der})), nil
}

// NormalizePublicKeyPEM parses and re-encodes a public key so that equal keys
// compare equal regardless of line endings or surrounding whitespace.
func NormalizePublicKeyPEM(data string) (string, error) {
	pub, err := ParsePublicKeyPEM([]byte(strings.TrimSpace(data)))
	if err != nil {
		return "", err
	}
	return EncodePublicKeyPEM(pub)
}

// Fingerprint returns the OpenSSH style SHA256 fingerprint of a PEM public key.
func Fingerprint(publicKeyPEM string) (string, error) {
	pub, err := ParsePublicKeyPEM([]byte(publicKeyPEM))
	if err != nil {
		return "", err
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCrypto, "failed to derive fingerprint")
	}
	return ssh.FingerprintSHA256(sshPub), nil
}
