package zombiezen

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/caasmo/authrelay/migrations"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// NewPool creates a SQLite connection pool with the defaults the
// application expects: WAL mode, a busy timeout, and foreign key
// enforcement on every connection. Cascading deletes (sessions,
// oauth accounts, conversations, messages) depend on the pragma.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = ON;", nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

// ApplyMigrations executes every embedded schema file against the pool.
// All statements are idempotent (CREATE ... IF NOT EXISTS), so running
// on an already-initialized database is a no-op.
func (d *Db) ApplyMigrations() error {
	conn, err := d.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection for migrations: %w", err)
	}
	defer d.pool.Put(conn)

	schemaFS := migrations.Schema()
	return fs.WalkDir(schemaFS, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		sql, err := fs.ReadFile(schemaFS, path)
		if err != nil {
			return fmt.Errorf("failed to read embedded migration %s: %w", path, err)
		}
		if err := sqlitex.ExecuteScript(conn, string(sql), nil); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", path, err)
		}
		return nil
	})
}
