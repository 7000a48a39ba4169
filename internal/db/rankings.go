package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"seotrack/internal/models"
)

// txBeginner is satisfied by both the pool and a single pooled connection.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InsertRankings appends one collection run's rankings in a single transaction.
// Either every row is written or none is.
func (d *DB) InsertRankings(ctx context.Context, rankings []models.Ranking) (int, error) {
	return insertRankings(ctx, d.Pool, rankings)
}

func insertRankings(ctx context.Context, conn txBeginner, rankings []models.Ranking) (int, error) {
	if len(rankings) == 0 {
		return 0, ErrNoRankings
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, r := range rankings {
		b.Queue(`
			INSERT INTO rankings (keyword_id, platform, position, visibility_score, url, collected_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.KeywordID, r.Platform, r.Position, r.VisibilityScore, r.URL, r.CollectedAt)
	}

	br := tx.SendBatch(ctx, b)
	inserted := 0
	for range rankings {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return 0, ErrKeywordNotFound
			}
			return 0, fmt.Errorf("failed to insert ranking: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close ranking batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit rankings: %w", err)
	}
	return inserted, nil
}

// RankingHistory returns every ranking of a keyword, most recent first.
func (d *DB) RankingHistory(ctx context.Context, keywordID int64) ([]models.Ranking, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, keyword_id, platform, position, visibility_score, url, collected_at
		FROM rankings
		WHERE keyword_id = $1
		ORDER BY collected_at DESC, id DESC
	`, keywordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rankings []models.Ranking
	for rows.Next() {
		var r models.Ranking
		if err := rows.Scan(&r.ID, &r.KeywordID, &r.Platform, &r.Position, &r.VisibilityScore, &r.URL, &r.CollectedAt); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// PlatformRankingCount is the number of stored rankings for one platform.
type PlatformRankingCount struct {
	Platform string
	Found    bool
	Count    int64
}

// CountRankingsByPlatform returns ranking row counts per platform, split by
// whether the target was found.
func (d *DB) CountRankingsByPlatform(ctx context.Context) ([]PlatformRankingCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT platform, position IS NOT NULL AS found, COUNT(*)
		FROM rankings
		GROUP BY platform, found
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []PlatformRankingCount
	for rows.Next() {
		var c PlatformRankingCount
		if err := rows.Scan(&c.Platform, &c.Found, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
