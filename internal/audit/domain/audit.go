// Package domain defines the chained audit log line format.
//
// Each line of an audit log file has the form
//
//	<seq>| <timestamp> | actor=<id> | service=<svc> | action=<action> | details=<d> | status=<STATUS> | prev=<digest> | hash=<digest>
//
// where hash = base64(sha256(prev + dataPart)) and dataPart is the text before
// " | prev=" with surrounding whitespace trimmed. The first line chains from
// GenesisDigest.
package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// GenesisDigest seeds the chain of every audit log file.
const GenesisDigest = "0000"

const (
	prevMarker = "| prev="
	hashMarker = " | hash="
)

// EventStatus is the outcome recorded for an audited action.
type EventStatus string

const (
	// EventStatusSuccess marks an action that completed.
	EventStatusSuccess EventStatus = "SUCCESS"
	// EventStatusFailed marks an action that was attempted and rejected or failed.
	EventStatusFailed EventStatus = "FAILED"
)

// Event is a single auditable action.
type Event struct {
	Actor   string
	Service string
	Action  string
	Details string
	Status  EventStatus
}

// LogFile describes an audit log file on disk.
type LogFile struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// ChainDigest computes the digest of a line from the previous digest and the line's data part.
func ChainDigest(prevDigest, dataPart string) string {
	sum := sha256.Sum256([]byte(prevDigest + dataPart))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// FormatLine renders event as line number seq chained from prevDigest.
// It returns the line without a trailing newline and the line's digest.
func FormatLine(seq int, ts time.Time, event Event, prevDigest string) (string, string) {
	dataPart := fmt.Sprintf(
		"%d| %s | actor=%s | service=%s | action=%s | details=%s | status=%s",
		seq,
		ts.UTC().Format(time.RFC3339Nano),
		sanitize(event.Actor),
		sanitize(event.Service),
		sanitize(event.Action),
		sanitize(event.Details),
		sanitize(string(event.Status)),
	)
	digest := ChainDigest(prevDigest, dataPart)
	return dataPart + " " + prevMarker + prevDigest + hashMarker + digest, digest
}

// ParseLine splits a line into its data part and the embedded prev and hash digests.
// ok is false when the line does not carry both markers.
func ParseLine(line string) (dataPart, prevDigest, hash string, ok bool) {
	prevIdx := strings.LastIndex(line, prevMarker)
	if prevIdx < 0 {
		return "", "", "", false
	}
	dataPart = strings.TrimSpace(line[:prevIdx])

	rest := line[prevIdx+len(prevMarker):]
	hashIdx := strings.Index(rest, hashMarker)
	if hashIdx < 0 {
		return "", "", "", false
	}
	prevDigest = rest[:hashIdx]
	hash = rest[hashIdx+len(hashMarker):]
	return dataPart, prevDigest, hash, true
}

// sanitize keeps field values on one line and away from the field separator.
func sanitize(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ", "|", "/").Replace(s)
}
