package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/data/db"
)

type stubSchema struct {
	status   db.SchemaStatus
	err      error
	migrated bool
}

func (s *stubSchema) SchemaStatus(context.Context) (db.SchemaStatus, error) {
	if s.migrated {
		return db.SchemaStatus{Current: s.status.Latest, Latest: s.status.Latest}, nil
	}
	return s.status, s.err
}

func (s *stubSchema) Migrate(context.Context) error {
	s.migrated = true
	return nil
}

func TestDatabaseCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("real database is current", func(t *testing.T) {
		database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close() })

		result := NewDatabaseCheck(database).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Contains(t, result.Items[0].Detail, "version 2")
	})

	t.Run("pending migrations are fixable", func(t *testing.T) {
		schema := &stubSchema{status: db.SchemaStatus{
			Current: 1,
			Latest:  2,
			Pending: []db.Migration{{Version: 2, Name: "kv_store"}},
		}}
		check := NewDatabaseCheck(schema)

		result := check.Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.True(t, result.Items[0].Fixable)
		assert.Contains(t, result.Items[0].Detail, "1 migration(s) pending up to 2")

		report := RunAll(ctx, []Check{check}, true)
		require.Len(t, report.Checks, 1)
		assert.True(t, schema.migrated)
		assert.Equal(t, StatusPass, report.Checks[0].Items[0].Status)
	})

	t.Run("status error fails", func(t *testing.T) {
		result := NewDatabaseCheck(&stubSchema{err: errors.New("disk I/O error")}).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Equal(t, "disk I/O error", result.Items[0].Detail)
	})
}
