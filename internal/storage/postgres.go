package storage

import (
	"context"
	"database/sql"

	"github.com/samber/oops"

	_ "github.com/lib/pq"
)

type PostgresBackend struct {
	sqlBackend
}

var (
	_ Backend = (*PostgresBackend)(nil)
	_ Lister  = (*PostgresBackend)(nil)
)

func NewPostgresBackend(ctx context.Context, connStr string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, oops.In("storage").Wrapf(err, "opening postgres connection")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, oops.In("storage").Wrapf(err, "connecting to postgres")
	}

	if err := migrate(ctx, db, "postgres", "migrations/postgres"); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresBackend{sqlBackend{
		db:      db,
		dialect: "postgres",
		queries: queries{
			get: `SELECT value FROM kv_items WHERE key = $1`,
			set: `
				INSERT INTO kv_items (key, value) VALUES ($1, $2)
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
			`,
			remove: `DELETE FROM kv_items WHERE key = $1`,
			clear:  `DELETE FROM kv_items`,
			keys:   `SELECT key FROM kv_items WHERE starts_with(key, $1) ORDER BY key`,
		},
	}}, nil
}
