package jobs

import (
	"context"
	"log/slog"
	"time"

	"seotrack/internal/models"
	"seotrack/internal/queue"
)

const scheduleBatchSize = 50

type staleKeywordSource interface {
	KeywordsNeedingCollection(ctx context.Context, maxAge time.Duration, limit int) ([]models.Keyword, error)
}

type collectionEnqueuer interface {
	EnqueueCollection(ctx context.Context, keywordID int64) (queue.Job, error)
}

// Scheduler periodically queues collection runs for keywords whose newest
// ranking is older than maxAge.
type Scheduler struct {
	source   staleKeywordSource
	enqueuer collectionEnqueuer
	interval time.Duration
	maxAge   time.Duration
}

// NewScheduler creates a scheduler.
func NewScheduler(source staleKeywordSource, enqueuer collectionEnqueuer, interval, maxAge time.Duration) *Scheduler {
	return &Scheduler{
		source:   source,
		enqueuer: enqueuer,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Serve runs the schedule loop until ctx is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	slog.Info("collection scheduler started", "interval", s.interval, "max_age", s.maxAge)

	// Run immediately on start
	s.enqueueStale(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("collection scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.enqueueStale(ctx)
		}
	}
}

// String names the scheduler in supervisor logs.
func (s *Scheduler) String() string {
	return "collection-scheduler"
}

// enqueueStale queues one batch of keywords needing collection and returns
// how many were queued.
func (s *Scheduler) enqueueStale(ctx context.Context) int {
	keywords, err := s.source.KeywordsNeedingCollection(ctx, s.maxAge, scheduleBatchSize)
	if err != nil {
		slog.Error("scheduler: failed to get keywords", "error", err)
		return 0
	}

	if len(keywords) == 0 {
		return 0
	}

	queued := 0
	for _, kw := range keywords {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.enqueuer.EnqueueCollection(ctx, kw.ID); err != nil {
			slog.Error("scheduler: failed to enqueue collection", "keyword_id", kw.ID, "keyword", kw.Keyword, "error", err)
			continue
		}
		queued++
	}

	slog.Info("scheduler: queued collection jobs", "count", queued, "stale", len(keywords))
	return queued
}
