// Package signature defines the canonical transaction payload and server-side
// signature verification.
//
// Signing lives in the signer sub-package and is only imported by client tooling.
// The server verifies signatures but never handles private key material.
package signature

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	apperrors "github.com/allisson/vouch/internal/errors"
)

// PayloadVersion is the first byte of every canonical payload. Changing the field
// set or encoding requires a new version so historical signatures keep verifying.
const PayloadVersion byte = 0x01

// VideoRefPrefix prefixes content-addressed video references.
const VideoRefPrefix = "sha256:"

// Payload holds the signable fields of a transaction.
type Payload struct {
	OwnerID        string
	RecipientID    string
	AmountMinor    int64
	ValidityMonths int
	VideoRef       string
}

// Canonicalize encodes p deterministically.
//
// Layout (version 1):
//
//	[0x01]
//	[len][ownerId]
//	[len][recipientId]
//	[len][amountMinor as base-10 integer]
//	[len][validityMonths as base-10 integer]
//	[len][videoRef]
//
// Each len is a 4-byte big-endian unsigned integer. Strings are UTF-8.
func Canonicalize(p Payload) []byte {
	buf := make([]byte, 0, 1+5*4+len(p.OwnerID)+len(p.RecipientID)+len(p.VideoRef)+24)
	buf = append(buf, PayloadVersion)
	buf = appendLengthPrefixed(buf, []byte(p.OwnerID))
	buf = appendLengthPrefixed(buf, []byte(p.RecipientID))
	buf = appendLengthPrefixed(buf, []byte(strconv.FormatInt(p.AmountMinor, 10)))
	buf = appendLengthPrefixed(buf, []byte(strconv.Itoa(p.ValidityMonths)))
	buf = appendLengthPrefixed(buf, []byte(p.VideoRef))
	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max (4GB).
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if uint64(dataLen) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// VideoRef returns the content-addressed reference of a video.
func VideoRef(video []byte) string {
	sum := sha256.Sum256(video)
	return VideoRefPrefix + hex.EncodeToString(sum[:])
}

// VideoRefFromDigest builds a reference from an already computed SHA-256 digest.
func VideoRefFromDigest(sum []byte) string {
	return VideoRefPrefix + hex.EncodeToString(sum)
}

// ParseVideoRef validates ref and returns its hex digest.
func ParseVideoRef(ref string) (string, error) {
	digest, ok := strings.CutPrefix(ref, VideoRefPrefix)
	if !ok || len(digest) != sha256.Size*2 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "malformed video reference")
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "malformed video reference")
	}
	if strings.ToLower(digest) != digest {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "video reference must be lowercase hex")
	}
	return digest, nil
}
