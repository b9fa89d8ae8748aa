package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewChatID generates a globally-unique opaque chat identifier. Falls back to
// a nanosecond timestamp if the secure random source is unavailable.
func NewChatID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// NowTimestamp returns the current time in the ISO-8601 form persisted in the
// chats.timestamp column.
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NormalizeTimestamp parses an ISO-8601 timestamp and re-renders it in UTC,
// so lexicographic order on the timestamp column matches chronological order
// regardless of the offset the caller supplied.
func NormalizeTimestamp(s string) (string, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return ts.UTC().Format(time.RFC3339), nil
}
