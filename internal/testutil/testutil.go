// Package testutil provides Postgres fixtures for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"seotrack/internal/db"
)

// TestDB connects to TEST_DATABASE_URL, runs migrations and returns a cleanup
// function. The test is skipped when TEST_DATABASE_URL is unset.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString, 0)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM cluster_keywords")
	pool.Exec(ctx, "DELETE FROM clusters")
	pool.Exec(ctx, "DELETE FROM forecasts")
	pool.Exec(ctx, "DELETE FROM rankings")
	pool.Exec(ctx, "DELETE FROM keywords")
}

// CreateTestKeyword inserts a keyword tracked for targetURL and returns its ID.
func CreateTestKeyword(t *testing.T, database *db.DB, keyword, targetURL string) int64 {
	t.Helper()

	var id int64
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO keywords (keyword, target_url, search_country)
		VALUES ($1, $2, 'us')
		RETURNING id
	`, keyword, targetURL).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test keyword: %v", err)
	}

	return id
}

// CreateTestRanking inserts a ranking observed at collectedAt. position 0 stores NULL.
func CreateTestRanking(t *testing.T, database *db.DB, keywordID int64, platform string, position int, collectedAt time.Time) {
	t.Helper()

	var pos *int
	if position > 0 {
		pos = &position
	}
	_, err := database.Pool.Exec(context.Background(), `
		INSERT INTO rankings (keyword_id, platform, position, collected_at)
		VALUES ($1, $2, $3, $4)
	`, keywordID, platform, pos, collectedAt)
	if err != nil {
		t.Fatalf("failed to create test ranking: %v", err)
	}
}
