// Package stores provides SQLite-backed implementations of the core store
// interfaces.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/vbisect/internal/core/kv"
	"github.com/colonyops/vbisect/internal/data/db"
)

// KVStore implements kv.KV on the kv_store table. Timestamps are stored as
// unix nanoseconds; expired rows read as missing and are removed lazily or
// by SweepExpired.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var (
	_ kv.KV      = (*KVStore)(nil)
	_ kv.Sweeper = (*KVStore)(nil)
)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// Put upserts value. Rewriting a key keeps its created_at.
func (s *KVStore) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}

	now := s.now()
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixNano(), Valid: true}
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		key, data, expiresAt, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

// Entry returns the stored entry for key.
func (s *KVStore) Entry(ctx context.Context, key string) (kv.Entry, error) {
	var (
		value              []byte
		expiresAt          sql.NullInt64
		createdAt, updated int64
	)
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`, key,
	).Scan(&value, &expiresAt, &createdAt, &updated)
	if IsNotFoundError(err) {
		return kv.Entry{}, fmt.Errorf("kv %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, err)
	}

	entry := kv.Entry{
		Key:       key,
		Value:     json.RawMessage(value),
		CreatedAt: time.Unix(0, createdAt),
		UpdatedAt: time.Unix(0, updated),
	}
	if expiresAt.Valid {
		entry.ExpiresAt = time.Unix(0, expiresAt.Int64)
		if !s.now().Before(entry.ExpiresAt) {
			_ = s.Delete(ctx, key)
			return kv.Entry{}, fmt.Errorf("kv %q expired: %w", key, kv.ErrNotFound)
		}
	}
	return entry, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// SweepExpired deletes every expired entry and returns how many were removed.
func (s *KVStore) SweepExpired(ctx context.Context) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("kv sweep expired: %w", err)
	}
	return res.RowsAffected()
}
