package storage

import (
	"context"
	"database/sql"

	"github.com/samber/oops"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteBackend struct {
	sqlBackend
}

var (
	_ Backend = (*SQLiteBackend)(nil)
	_ Lister  = (*SQLiteBackend)(nil)
)

// NewSQLiteBackend opens (or creates) the database file at dbPath and applies
// the schema migrations. Use ":memory:" for a throwaway database.
func NewSQLiteBackend(ctx context.Context, dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, oops.In("storage").With("path", dbPath).Wrapf(err, "opening sqlite database")
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, "sqlite3", "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteBackend{sqlBackend{
		db:      db,
		dialect: "sqlite3",
		queries: queries{
			get: `SELECT value FROM kv_items WHERE key = ?`,
			set: `
				INSERT INTO kv_items (key, value) VALUES (?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value
			`,
			remove: `DELETE FROM kv_items WHERE key = ?`,
			clear:  `DELETE FROM kv_items`,
			keys:   `SELECT key FROM kv_items WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
		},
	}}, nil
}
