// Package kv provides the small key-value stores the client persists its session in.
package kv

import "context"

// Store is an append-only key-value store. Writes are not transactional.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Del removes keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Close releases the underlying resources.
	Close() error
}
