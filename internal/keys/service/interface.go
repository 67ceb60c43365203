// Package service provides key material generation for key pairs.
package service

// KeyGenerator creates asymmetric key pairs.
type KeyGenerator interface {
	// Generate returns a PEM encoded PKIX public key and a PEM encoded PKCS#8
	// private key. The private key must only be handed to the requesting owner.
	Generate() (publicKeyPEM string, privateKeyPEM string, err error)
}
