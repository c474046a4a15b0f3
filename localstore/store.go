// Package localstore implements the local store port: a small key-value
// capability used to persist session credentials and session-adjacent
// settings between process runs. Adapters exist for in-memory maps,
// Redis, and SQLite.
package localstore

import "context"

// Store is a single-slot-per-key string store. Get reports presence
// explicitly so callers can distinguish an absent key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
