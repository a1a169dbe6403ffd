package storage

import (
	"errors"

	"github.com/nats-io/nats.go/jetstream"
)

// Common storage errors.
var (
	// ErrNotFound is returned when a record is not in the bucket.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKey is returned for malformed record keys.
	ErrInvalidKey = errors.New("invalid record key")
)

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
