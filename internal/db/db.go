package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"seotrack/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool. maxConns <= 0 keeps the pgx default.
func New(ctx context.Context, connString string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevKeywords inserts sample keywords for development. Skips keywords that already exist.
func (d *DB) SeedDevKeywords(ctx context.Context) error {
	keywords := []struct {
		keyword   string
		targetURL string
		country   string
		intent    string
	}{
		{"best running shoes", "https://example.com/running-shoes", "us", "commercial"},
		{"trail running shoes", "https://example.com/trail", "us", "commercial"},
		{"python tutorial", "https://example.org/python", "us", "informational"},
		{"learn python online", "https://example.org/python", "gb", "informational"},
		{"buy espresso machine", "https://shop.example.net/espresso", "de", "transactional"},
	}

	query := `
		INSERT INTO keywords (keyword, target_url, search_country, intent)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM keywords WHERE keyword = $1 AND search_country = $3)
	`

	for _, kw := range keywords {
		if _, err := d.Pool.Exec(ctx, query, kw.keyword, kw.targetURL, kw.country, kw.intent); err != nil {
			return fmt.Errorf("failed to seed keyword %s: %w", kw.keyword, err)
		}
	}

	return nil
}
