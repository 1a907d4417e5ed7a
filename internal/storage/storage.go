// Package storage is the durable string key/value store behind restored UI
// state: carousel offsets, filter preferences and the login session.
package storage

import "context"

// Store is a durable string key/value store.
// Multi-key writes and deletes are atomic: either every key changes or none do.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
