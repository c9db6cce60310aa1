package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hperssn/practicetimer/internal/config"
)

// Backend is a durable, string-keyed store shared by every consumer of the
// same database. Clear removes every key, not only those of one consumer.
type Backend interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Deleting an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	// Keys returns the keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

const (
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindValkey   = "valkey"
	KindMemory   = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open creates the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case KindSQLite:
		return NewSQLiteBackend(ctx, cfg.SQLite.Path)
	case KindPostgres:
		return NewPostgresBackend(ctx, cfg.Postgres.DSN)
	case KindValkey:
		return DialValkey(cfg.Valkey)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
