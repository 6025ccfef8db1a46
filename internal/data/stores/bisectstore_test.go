package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/data/db"
)

func newTestBisectStore(t *testing.T) *BisectStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewBisectStore(database)
}

func TestBisectStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestBisectStore(t)

	require.NoError(t, store.Create(ctx, history.Session{
		ID:        "s1",
		Good:      "30.0.0",
		Bad:       "30.0.4",
		RangeSize: 5,
	}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "30.0.0", got.Good)
	assert.Equal(t, "30.0.4", got.Bad)
	assert.Equal(t, 5, got.RangeSize)
	assert.Equal(t, history.StatusRunning, got.Status)
	assert.Empty(t, got.ResultGood)
	assert.Empty(t, got.Steps)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestBisectStore_GetNotFound(t *testing.T) {
	store := newTestBisectStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestBisectStore_StepsAndFinish(t *testing.T) {
	ctx := context.Background()
	store := newTestBisectStore(t)

	require.NoError(t, store.Create(ctx, history.Session{ID: "s1", Good: "1.0.0", Bad: "1.0.3", RangeSize: 4}))
	require.NoError(t, store.AddStep(ctx, "s1", history.Step{Version: "1.0.0", Good: true}))
	require.NoError(t, store.AddStep(ctx, "s1", history.Step{Version: "1.0.1", Good: true}))
	require.NoError(t, store.AddStep(ctx, "s1", history.Step{Version: "1.0.2", Good: false}))
	require.NoError(t, store.Finish(ctx, "s1", history.StatusCompleted, "1.0.1", "1.0.2"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, history.StatusCompleted, got.Status)
	assert.Equal(t, "1.0.1", got.ResultGood)
	assert.Equal(t, "1.0.2", got.ResultBad)

	require.Len(t, got.Steps, 3)
	assert.Equal(t, "1.0.0", got.Steps[0].Version)
	assert.True(t, got.Steps[0].Good)
	assert.Equal(t, "1.0.2", got.Steps[2].Version)
	assert.False(t, got.Steps[2].Good)
}

func TestBisectStore_UnknownSession(t *testing.T) {
	ctx := context.Background()
	store := newTestBisectStore(t)

	err := store.AddStep(ctx, "nope", history.Step{Version: "1.0.0", Good: true})
	require.ErrorIs(t, err, history.ErrNotFound)

	err = store.Finish(ctx, "nope", history.StatusCancelled, "", "")
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestBisectStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestBisectStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.Create(ctx, history.Session{
			ID:        id,
			Good:      "1.0.0",
			Bad:       "1.0.9",
			RangeSize: 10,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.AddStep(ctx, "mid", history.Step{Version: "1.0.0", Good: true}))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Len(t, all[1].Steps, 1)
	assert.Equal(t, "old", all[2].ID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestBisectStore_ListEmpty(t *testing.T) {
	got, err := newTestBisectStore(t).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBisectStore_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store := newTestBisectStore(t)

	long := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, history.Session{
		ID: "finished", Good: "1.0.0", Bad: "1.0.1", RangeSize: 2,
		Status: history.StatusCompleted, CreatedAt: long,
	}))
	require.NoError(t, store.Create(ctx, history.Session{
		ID: "running", Good: "1.0.0", Bad: "1.0.1", RangeSize: 2, CreatedAt: long,
	}))
	require.NoError(t, store.AddStep(ctx, "finished", history.Step{Version: "1.0.0", Good: true, CreatedAt: long}))

	n, err := store.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "finished")
	require.ErrorIs(t, err, history.ErrNotFound)

	_, err = store.Get(ctx, "running")
	require.NoError(t, err)
}
