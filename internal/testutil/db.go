//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/alanyang/prompt-manager/internal/adapter/postgres"
)

// SetupTestDB connects to the test database and applies the embedded migrations.
// It skips the test if TEST_DATABASE_URL is not set.
// Each call uses the same DB; callers scope isolation by unique keys.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgdb.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}
