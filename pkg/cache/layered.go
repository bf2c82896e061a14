package cache

import (
	"context"
	"errors"
)

// LayeredStore implements a two-level store (L1: memory, L2: any Store).
type LayeredStore struct {
	mem     *MemoryStore
	backing Store
}

// NewLayeredStore creates a layered store with a memory front.
func NewLayeredStore(backing Store, opts ...LayeredOption) *LayeredStore {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredStore{
		mem:     NewMemoryStore(WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryTTL(cfg.MemoryTTL)),
		backing: backing,
	}
}

func (ls *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	// Write-through: backing first, then memory
	if err := ls.backing.Set(ctx, key, value); err != nil {
		return err
	}
	_ = ls.mem.Set(ctx, key, value)
	return nil
}

func (ls *LayeredStore) Get(ctx context.Context, key string) ([]byte, error) {
	if data, err := ls.mem.Get(ctx, key); err == nil {
		return data, nil
	}

	data, err := ls.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = ls.mem.Set(ctx, key, data)
	return data, nil
}

func (ls *LayeredStore) Delete(ctx context.Context, keys ...string) error {
	_ = ls.mem.Delete(ctx, keys...)
	return ls.backing.Delete(ctx, keys...)
}

// Close closes both layers.
func (ls *LayeredStore) Close() error {
	return errors.Join(ls.mem.Close(), ls.backing.Close())
}
