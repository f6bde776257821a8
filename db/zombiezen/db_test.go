package zombiezen

import (
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// newTestDB creates an in-memory SQLite database with the full schema
// applied and foreign keys enabled, matching the production pool setup.
func newTestDB(t *testing.T) *Db {
	t.Helper()

	pool, err := sqlitex.NewPool("file::memory:", sqlitex.PoolOptions{
		PoolSize: 1,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = ON;", nil)
		},
	})
	if err != nil {
		t.Fatalf("failed to create db pool: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close db pool: %v", err)
		}
	})

	testDB, err := New(pool)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	if err := testDB.ApplyMigrations(); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return testDB
}

func TestNewRequiresPool(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}
