// Package fingerprint derives revision identifiers from content snapshots.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ShortLen is the hex length of a normal revision id. LongLen is used once
// when a short fingerprint collides with an existing revision.
const (
	ShortLen = 12
	LongLen  = 24
)

// New returns the truncated hex SHA-256 of content, timestamp and
// contributor. Including contributor and timestamp keeps ids distinct even
// for identical content committed by different people or at different times.
func New(content string, ts time.Time, contributor string) string {
	return sum(content, ts, contributor)[:ShortLen]
}

// Long returns the extended-length fingerprint for collision recovery.
func Long(content string, ts time.Time, contributor string) string {
	return sum(content, ts, contributor)[:LongLen]
}

func sum(content string, ts time.Time, contributor string) string {
	h := sha256.New()
	h.Write([]byte(content))
	h.Write([]byte(ts.Format(time.RFC3339Nano)))
	h.Write([]byte(contributor))
	return hex.EncodeToString(h.Sum(nil))
}
