package sqlite_test

import (
	"context"
	"testing"

	"github.com/SirWilliamIII/wanderer/sqlite"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory database with schema for testing.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		var docCount int
		err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM documents").Scan(&docCount)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		require.Error(t, db.Open())
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/test.db")
		require.NoError(t, db.Open())
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}
