package iocache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDir(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		dir, err := migrationsDir(backend)
		require.NoError(t, err)
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 6, "every backend ships up and down files for each version")
	}
	_, err := migrationsDir(schema.RedisBackend)
	assert.Error(t, err)
}

func TestMigrateHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	var out bytes.Buffer

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1, &out))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 3")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1, &out))
	assert.Contains(t, out.String(), "No migration needed. Database is already at version 3")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, 1, &out))
	assert.Contains(t, out.String(), "from version 3 to version 1")

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, 0, &out))
	assert.Contains(t, out.String(), "from version 1 to version 0")

	// Opening the store brings the schema back to the latest version.
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out.Reset()
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1, &out))
	assert.Contains(t, out.String(), "already at version 3")
}

func TestMigrateHistoryErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, MigrateHistory(schema.NoneBackend, "", -1, &out))
	assert.Error(t, MigrateHistory(schema.RedisBackend, "localhost:6379", -1, &out))
	assert.Error(t, MigrateHistory(schema.SQLiteBackend, filepath.Join(t.TempDir(), "h.db"), 9, &out))
}
