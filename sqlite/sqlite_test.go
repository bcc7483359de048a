package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory database closed at test cleanup.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func userVersion(t *testing.T, db *sqlite.DB) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&v))
	return v
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("migrates a new database", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		assert.Equal(t, sqlite.SchemaVersion, userVersion(t, db))
		for _, table := range []string{"chunks", "index_meta"} {
			var n int
			err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
			require.NoError(t, err, table)
			assert.Zero(t, n, table)
		}
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/rag.db")
		require.Error(t, db.Open())
	})

	t.Run("enables WAL mode for file databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "rag.db"))
		require.NoError(t, db.Open())
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		assert.Equal(t, "wal", journalMode)
	})

	t.Run("reopening keeps data and version", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rag.db")
		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(),
			"INSERT INTO index_meta (key, value) VALUES ('written_at', 'x')")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		var value string
		err = db.QueryRowContext(context.Background(),
			"SELECT value FROM index_meta WHERE key = 'written_at'").Scan(&value)
		require.NoError(t, err)
		assert.Equal(t, "x", value)
		assert.Equal(t, sqlite.SchemaVersion, userVersion(t, db))
	})

	t.Run("rejects newer schema", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rag.db")
		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(), "PRAGMA user_version = 99")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		err = sqlite.NewDB(path).Open()

		require.Error(t, err)
		assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
	})
}
