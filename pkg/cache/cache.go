package cache

import (
	"context"
	"errors"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Store is a byte-oriented key/value store. Values are opaque payloads
// (CSV rows, JSON documents) owned by the caller; a Set overwrites the
// whole entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
