package kv

import (
	"context"
	"time"
)

// Cache is a typed view over one namespace of a KV store. Keys are stored
// as "namespace:key".
type Cache[T any] struct {
	store     KV
	namespace string
}

// NewCache returns a Cache for values of type T under namespace.
func NewCache[T any](store KV, namespace string) Cache[T] {
	return Cache[T]{store: store, namespace: namespace}
}

func (c Cache[T]) key(k string) string {
	return c.namespace + ":" + k
}

// Get returns the cached value and when it was written.
func (c Cache[T]) Get(ctx context.Context, key string) (T, time.Time, error) {
	var v T
	entry, err := c.store.Entry(ctx, c.key(key))
	if err != nil {
		return v, time.Time{}, err
	}
	if err := entry.Decode(&v); err != nil {
		return v, time.Time{}, err
	}
	return v, entry.UpdatedAt, nil
}

// Put stores value. A ttl of zero or less keeps it until deleted.
func (c Cache[T]) Put(ctx context.Context, key string, value T, ttl time.Duration) error {
	return c.store.Put(ctx, c.key(key), value, ttl)
}

// Delete removes key from the namespace.
func (c Cache[T]) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.key(key))
}
