package storage

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
)

//go:embed migrations
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return oops.In("storage").With("dialect", dialect).Wrapf(err, "setting goose dialect")
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return oops.In("storage").With("dialect", dialect).Wrapf(err, "applying migrations")
	}

	return nil
}
