package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/data/db"
	"github.com/colonyops/vbisect/internal/data/stores"
)

func setup(t *testing.T) (*stores.KVStore, *stores.BisectStore) {
	t.Helper()
	database := openDB(t)
	return stores.NewKVStore(database), stores.NewBisectStore(database)
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOnce(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	kvStore, sessions := stores.NewKVStore(database), stores.NewBisectStore(database)

	require.NoError(t, kvStore.Put(ctx, "expired", "x", time.Millisecond))
	require.NoError(t, kvStore.Put(ctx, "kept", "y", 0))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, sessions.Create(ctx, history.Session{
		ID: "old-done", Good: "1.0.0", Bad: "1.0.4", RangeSize: 5,
		Status: history.StatusCompleted, ResultGood: "1.0.1", ResultBad: "1.0.2",
		CreatedAt: old, UpdatedAt: old,
	}))
	require.NoError(t, sessions.Create(ctx, history.Session{
		ID: "old-running", Good: "1.0.0", Bad: "1.0.4", RangeSize: 5,
		Status: history.StatusRunning, CreatedAt: old, UpdatedAt: old,
	}))

	time.Sleep(5 * time.Millisecond)
	Once(ctx, kvStore, sessions, time.Hour)

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store").Scan(&count))
	assert.Equal(t, 1, count, "only the unexpired entry is left")
	_, err := kvStore.Entry(ctx, "kept")
	require.NoError(t, err)

	list, err := sessions.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "old-running", list[0].ID)
}

func TestOnce_ZeroRetentionKeepsHistory(t *testing.T) {
	ctx := context.Background()
	kvStore, sessions := setup(t)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, sessions.Create(ctx, history.Session{
		ID: "s", Good: "1.0.0", Bad: "1.0.1", RangeSize: 2,
		Status: history.StatusCancelled, CreatedAt: old, UpdatedAt: old,
	}))

	Once(ctx, kvStore, sessions, 0)

	list, err := sessions.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStart_StopsOnCancel(t *testing.T) {
	kvStore, sessions := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Start(ctx, kvStore, sessions, Options{Interval: 10 * time.Millisecond, Retention: time.Hour})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
