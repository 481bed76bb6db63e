// ABOUTME: Slot interface for durable key/value persistence
// ABOUTME: A slot holds one serialized value per key; absence is ErrNotFound

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a slot holds no value
var ErrNotFound = errors.New("not found")

// ErrQuotaExceeded is returned when a value is larger than the store accepts
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Slot is a durable key/value location for serialized documents.
type Slot interface {
	// Get returns the stored value, or ErrNotFound if the key is empty.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
