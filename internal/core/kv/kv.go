// Package kv defines the persistent key-value store behind the release
// cache.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for keys that are missing or expired.
var ErrNotFound = errors.New("kv: not found")

// Entry is a stored value with its bookkeeping timestamps.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt time.Time // zero when the entry never expires
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Age returns how long ago the entry was last written.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// Decode unmarshals the stored JSON into dest.
func (e Entry) Decode(dest any) error {
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return fmt.Errorf("kv decode %q: %w", e.Key, err)
	}
	return nil
}

// KV stores JSON-encoded values by key.
type KV interface {
	// Put writes value under key. A ttl of zero or less never expires.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
	// Entry returns the entry for key, or an error wrapping ErrNotFound.
	Entry(ctx context.Context, key string) (Entry, error)
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by stores that can purge expired entries eagerly.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// IsNotFound reports whether err means the key is missing or expired.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
