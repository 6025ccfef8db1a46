package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func hasTable(t *testing.T, conn *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := conn.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestOpen_AppliesAllMigrations(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)

	applied, err := appliedVersions(ctx, database.Conn())
	require.NoError(t, err)
	assert.Len(t, applied, len(migrations))
	for _, m := range migrations {
		assert.True(t, applied[m.Version], "migration %04d", m.Version)
	}

	for _, table := range []string{"bisect_sessions", "bisect_steps", "kv_store"} {
		assert.True(t, hasTable(t, database.Conn(), table), table)
	}

	require.NoError(t, database.Migrate(ctx), "migrating an up to date schema is a no-op")
}

func TestMigrateDown(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	_, err := conn.ExecContext(ctx, `
		INSERT INTO bisect_sessions (id, good, bad, range_size, status, created_at, updated_at)
		VALUES ('s1', '30.0.0', '30.0.4', 5, 'running', 1, 1)
	`)
	require.NoError(t, err)

	require.NoError(t, MigrateDown(ctx, conn, 1))
	assert.False(t, hasTable(t, conn, "kv_store"))
	assert.Equal(t, 1, countRows(t, conn, "bisect_sessions"), "older tables keep their rows")

	t.Run("rejects non-positive n", func(t *testing.T) {
		require.Error(t, MigrateDown(ctx, conn, 0))
		require.Error(t, MigrateDown(ctx, conn, -1))
	})

	t.Run("rejects more than applied", func(t *testing.T) {
		require.ErrorContains(t, MigrateDown(ctx, conn, 5), "only 1 are applied")
	})
}

func TestSchemaStatus(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)
	latest := migrations[len(migrations)-1].Version

	status, err := database.SchemaStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.UpToDate())
	assert.Equal(t, SchemaStatus{Current: latest, Latest: latest}, status)

	require.NoError(t, MigrateDown(ctx, database.Conn(), 1))

	status, err = database.SchemaStatus(ctx)
	require.NoError(t, err)
	require.Len(t, status.Pending, 1)
	assert.Equal(t, latest, status.Pending[0].Version)
	assert.Equal(t, latest-1, status.Current)

	require.NoError(t, database.Migrate(ctx))
	status, err = database.SchemaStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.UpToDate())
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	insert := "INSERT INTO kv_store (key, value, created_at, updated_at) VALUES ('catalog:releases', '[]', 1, 1)"

	first, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	_, err = first.Conn().ExecContext(ctx, insert)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	assert.Equal(t, 1, countRows(t, second.Conn(), "kv_store"))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := database.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO kv_store (key, value, created_at, updated_at) VALUES ('k', '1', 1, 1)")
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.Zero(t, countRows(t, database.Conn(), "kv_store"))
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "versions are contiguous from 1")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}

func TestParseFilename(t *testing.T) {
	version, name, direction, err := parseFilename("0002_kv_store.down.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, "kv_store", name)
	assert.Equal(t, "down", direction)

	for _, bad := range []string{
		"bad.sql",
		"0001_sessions.sql",
		"0000_zero.up.sql",
		"-1_negative.up.sql",
		"abc_notnumber.up.sql",
		"0001_.up.sql",
		"0001_Upper.up.sql",
	} {
		_, _, _, err := parseFilename(bad)
		assert.Error(t, err, bad)
	}
}
