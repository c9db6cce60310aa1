package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"
)

// queries holds the dialect specific statements of a sqlBackend.
type queries struct {
	get    string
	set    string
	remove string
	clear  string
	keys   string
}

type sqlBackend struct {
	db      *sql.DB
	dialect string
	queries queries
}

func (b *sqlBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, b.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.In("storage").With("dialect", b.dialect, "key", key).Wrapf(err, "reading item")
	}

	return value, true, nil
}

func (b *sqlBackend) SetItem(ctx context.Context, key, value string) error {
	if _, err := b.db.ExecContext(ctx, b.queries.set, key, value); err != nil {
		return oops.In("storage").With("dialect", b.dialect, "key", key).Wrapf(err, "writing item")
	}
	return nil
}

func (b *sqlBackend) RemoveItem(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, b.queries.remove, key); err != nil {
		return oops.In("storage").With("dialect", b.dialect, "key", key).Wrapf(err, "removing item")
	}
	return nil
}

func (b *sqlBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, b.queries.clear); err != nil {
		return oops.In("storage").With("dialect", b.dialect).Wrapf(err, "clearing items")
	}
	return nil
}

func (b *sqlBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, b.queries.keys, prefix)
	if err != nil {
		return nil, oops.In("storage").With("dialect", b.dialect, "prefix", prefix).Wrapf(err, "listing keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, oops.In("storage").With("dialect", b.dialect).Wrapf(err, "scanning key")
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}
