package doctor

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

func newHistoryStore(t *testing.T) *stores.BisectStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewBisectStore(database)
}

func TestSessionsCheck(t *testing.T) {
	ctx := context.Background()
	store := newHistoryStore(t)
	old := time.Now().Add(-48 * time.Hour)

	seed := []history.Session{
		{ID: "abandoned", Good: "1.0.0", Bad: "1.0.9", RangeSize: 10, Status: history.StatusRunning, CreatedAt: old, UpdatedAt: old},
		{ID: "active", Good: "1.0.0", Bad: "1.0.9", RangeSize: 10, Status: history.StatusRunning},
		{ID: "done", Good: "1.0.0", Bad: "1.0.9", RangeSize: 10, Status: history.StatusCompleted, CreatedAt: old, UpdatedAt: old},
	}
	for _, s := range seed {
		require.NoError(t, store.Create(ctx, s))
	}

	check := NewSessionsCheck(store, DefaultStaleAfter)

	result := check.Run(ctx)
	assert.Equal(t, "Sessions", result.Name)
	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "3 sessions recorded", result.Items[0].Detail)
	assert.Equal(t, "abandoned", result.Items[1].Label)
	assert.Equal(t, StatusWarn, result.Items[1].Status)
	assert.True(t, result.Items[1].Fixable)

	require.NoError(t, check.Fix(ctx))

	sess, err := store.Get(ctx, "abandoned")
	require.NoError(t, err)
	assert.Equal(t, history.StatusCancelled, sess.Status)

	sess, err = store.Get(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, history.StatusRunning, sess.Status)

	result = check.Run(ctx)
	assert.Len(t, result.Items, 1)
}
