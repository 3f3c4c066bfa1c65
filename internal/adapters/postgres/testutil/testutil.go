package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/district-compass/school-search-api/internal/adapters/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_queries (
	id           BIGSERIAL PRIMARY KEY,
	at           TIMESTAMPTZ NOT NULL,
	field        TEXT        NOT NULL,
	query        TEXT        NOT NULL DEFAULT '',
	district_id  TEXT        NOT NULL DEFAULT '',
	result_count INTEGER     NOT NULL DEFAULT 0,
	duration_ms  BIGINT      NOT NULL DEFAULT 0
);
`

// OpenMigratedPool connects to TEST_DATABASE_URL, applies the schema, and
// truncates tables so each test starts clean. Tests are skipped when the env
// var is unset (no database available in the environment).
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres contract tests")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE search_queries RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
