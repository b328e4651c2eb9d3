// Package keystore provides the local key-value persistence boundary used by
// the trip draft builder and the itinerary store. Values are opaque byte
// strings; callers own serialization.
package keystore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Store defines the interface for opaque key-value persistence.
type Store interface {
	// Get retrieves the value stored under key.
	// Returns ErrKeyNotFound if the key has no value.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the value stored under key.
	// Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
