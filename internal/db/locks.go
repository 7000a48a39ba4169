package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"seotrack/internal/models"
)

// unlockTimeout bounds the unlock query so a hung database cannot stall the caller.
const unlockTimeout = 5 * time.Second

// KeywordLock is a held collection lock for one keyword. Writes made through
// it run on the connection that holds the lock, so a run never needs a second
// pooled connection while it is locked.
type KeywordLock interface {
	InsertRankings(ctx context.Context, rankings []models.Ranking) (int, error)
	Release()
}

type keywordLock struct {
	conn      *pgxpool.Conn
	keywordID int64
}

// TryLockKeyword takes a session-level advisory lock for one keyword's
// collection run. It does not block: acquired is false (and lock nil) when
// another session holds the lock. The lock key is the full bigint keyword id.
// Release must be called exactly once on an acquired lock.
func (d *DB) TryLockKeyword(ctx context.Context, keywordID int64) (lock KeywordLock, acquired bool, err error) {
	conn, err := d.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection: %w", err)
	}

	err = conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1::bigint)", keywordID).Scan(&acquired)
	if err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to try advisory lock (keyword=%d): %w", keywordID, err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	return &keywordLock{conn: conn, keywordID: keywordID}, true, nil
}

// InsertRankings appends rankings in one transaction on the lock's connection.
func (l *keywordLock) InsertRankings(ctx context.Context, rankings []models.Ranking) (int, error) {
	return insertRankings(ctx, l.conn, rankings)
}

// Release unlocks and returns the connection to the pool. The job context may
// already be done, so the unlock runs on its own bounded context.
func (l *keywordLock) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	var released bool
	if err := l.conn.QueryRow(ctx, "SELECT pg_advisory_unlock($1::bigint)", l.keywordID).Scan(&released); err != nil || !released {
		slog.Error("failed to release keyword lock", "keyword_id", l.keywordID, "error", err)
		// A connection that still holds the lock must not go back to the pool.
		l.conn.Conn().Close(ctx)
	}
	l.conn.Release()
}
