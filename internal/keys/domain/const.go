package domain

const (
	// MaxKeyNameLength matches the key_name column size.
	MaxKeyNameLength = 255

	// RSAKeyBits is the modulus size of generated key pairs.
	RSAKeyBits = 2048
)
