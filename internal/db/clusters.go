package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"seotrack/internal/models"
)

// SaveClusters writes a clustering run's clusters and memberships in one
// transaction. Any failure rolls back the whole run. IDs and creation times
// are filled in on the returned clusters.
func (d *DB) SaveClusters(ctx context.Context, clusters []models.ClusterWithKeywords) ([]models.ClusterWithKeywords, error) {
	for _, c := range clusters {
		if len(c.KeywordIDs) == 0 {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrEmptyCluster)
		}
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saved := make([]models.ClusterWithKeywords, len(clusters))
	for i, c := range clusters {
		err := tx.QueryRow(ctx, `
			INSERT INTO clusters (name, intent, topic_similarity)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, c.Name, c.Intent, c.TopicSimilarity).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert cluster %s: %w", c.Name, err)
		}
		saved[i] = c
	}

	b := &pgx.Batch{}
	count := 0
	for _, c := range saved {
		for _, keywordID := range c.KeywordIDs {
			b.Queue(`INSERT INTO cluster_keywords (cluster_id, keyword_id) VALUES ($1, $2)`, c.ID, keywordID)
			count++
		}
	}

	br := tx.SendBatch(ctx, b)
	for k := 0; k < count; k++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return nil, ErrKeywordNotFound
			}
			return nil, fmt.Errorf("failed to insert cluster membership: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close membership batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit clusters: %w", err)
	}
	return saved, nil
}
