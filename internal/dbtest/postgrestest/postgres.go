package postgrestest

import (
	"context"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	slogctx "github.com/veqryn/slog-context"
)

const (
	DBUser     = "postgres"
	DBPassword = "secret"
	DBName     = "practice_timer"
)

// Start initialises an empty PostgreSQL instance and returns its connection string
// and a termination function.
func Start(ctx context.Context) (string, func(ctx context.Context)) {
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(DBName),
		postgres.WithUsername(DBUser),
		postgres.WithPassword(DBPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		slogctx.Error(ctx, "Failed to start PostgreSQL", "error", err)
		panic(err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		slogctx.Error(ctx, "Failed to build the PostgreSQL connection string", "error", err)
		panic(err)
	}

	terminate := func(ctx context.Context) {
		if err := pgContainer.Terminate(ctx); err != nil {
			slogctx.Error(ctx, "Failed to terminate PostgreSQL container", "error", err)
			panic(err)
		}
	}

	return connStr, terminate
}
