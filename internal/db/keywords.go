package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"seotrack/internal/models"
)

// keywordColumns is the standard column list for keyword queries.
const keywordColumns = `id, keyword, target_url, search_country, intent, created_at, updated_at`

// scanKeyword scans a row into a Keyword struct.
func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var kw models.Keyword
	err := row.Scan(
		&kw.ID,
		&kw.Keyword,
		&kw.TargetURL,
		&kw.SearchCountry,
		&kw.Intent,
		&kw.CreatedAt,
		&kw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// scanKeywords scans multiple rows into a slice of Keywords.
func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(
			&kw.ID,
			&kw.Keyword,
			&kw.TargetURL,
			&kw.SearchCountry,
			&kw.Intent,
			&kw.CreatedAt,
			&kw.UpdatedAt,
		); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}

	return keywords, rows.Err()
}

// GetKeyword retrieves a keyword by ID.
func (d *DB) GetKeyword(ctx context.Context, id int64) (*models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE id = $1`
	return scanKeyword(d.Pool.QueryRow(ctx, query, id))
}

// GetKeywordsByIDs retrieves the keywords that exist among ids, ordered by id.
// Unknown ids are skipped.
func (d *DB) GetKeywordsByIDs(ctx context.Context, ids []int64) ([]models.Keyword, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE id = ANY($1) ORDER BY id`
	rows, err := d.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}

// KeywordsNeedingCollection retrieves keywords with no ranking newer than maxAge,
// least recently collected first.
func (d *DB) KeywordsNeedingCollection(ctx context.Context, maxAge time.Duration, limit int) ([]models.Keyword, error) {
	cutoff := time.Now().Add(-maxAge)
	query := `
		SELECT k.id, k.keyword, k.target_url, k.search_country, k.intent, k.created_at, k.updated_at
		FROM keywords k
		LEFT JOIN LATERAL (
			SELECT MAX(collected_at) AS last_collected FROM rankings r WHERE r.keyword_id = k.id
		) last ON true
		WHERE last.last_collected IS NULL OR last.last_collected < $1
		ORDER BY last.last_collected NULLS FIRST, k.id
		LIMIT $2
	`

	rows, err := d.Pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}
