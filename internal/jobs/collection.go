package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"seotrack/internal/db"
	"seotrack/internal/metrics"
	"seotrack/internal/models"
	"seotrack/internal/platform"
	"seotrack/internal/scoring"
)

// CollectionStore is the persistence a collection run needs.
type CollectionStore interface {
	GetKeyword(ctx context.Context, id int64) (*models.Keyword, error)
	// TryLockKeyword returns a held lock whose InsertRankings commits on the
	// lock's own connection.
	TryLockKeyword(ctx context.Context, keywordID int64) (lock db.KeywordLock, acquired bool, err error)
}

// CollectionConfig tunes a collection run.
type CollectionConfig struct {
	// Concurrency bounds the platforms queried at once. <= 0 queries all at once.
	Concurrency int
	// CommitTimeout bounds the final insert, which runs even after the job deadline.
	CommitTimeout time.Duration
}

// CollectionJob gathers one observation per platform for a keyword, scores
// them and stores one ranking per platform that answered.
type CollectionJob struct {
	store    CollectionStore
	registry *platform.Registry
	scorer   *scoring.Scorer
	cfg      CollectionConfig
	now      func() time.Time
}

// NewCollectionJob creates a collection job.
func NewCollectionJob(store CollectionStore, registry *platform.Registry, scorer *scoring.Scorer, cfg CollectionConfig) *CollectionJob {
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = 10 * time.Second
	}
	return &CollectionJob{
		store:    store,
		registry: registry,
		scorer:   scorer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// platformOutcome is what one platform call produced.
type platformOutcome struct {
	platform string
	obs      models.Observation
	err      error
}

// Run collects keywordID across every registered platform.
func (j *CollectionJob) Run(ctx context.Context, keywordID int64) models.JobResult {
	kw, err := j.store.GetKeyword(ctx, keywordID)
	if err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return models.Failure(fmt.Sprintf("keyword %d not found", keywordID))
		}
		return models.Failure(fmt.Sprintf("failed to load keyword %d: %v", keywordID, err))
	}

	lock, acquired, err := j.store.TryLockKeyword(ctx, keywordID)
	if err != nil {
		return models.Failure(fmt.Sprintf("failed to lock keyword %d: %v", keywordID, err))
	}
	if !acquired {
		return models.Warning("collection already running", models.CollectionSummary{KeywordID: keywordID})
	}
	defer lock.Release()

	platforms := j.registry.Platforms()
	if len(platforms) == 0 {
		return models.Failure("no platforms configured")
	}

	outcomes := j.collectAll(ctx, kw, platforms)

	var observations []models.Observation
	failed := make(map[string]string)
	for _, o := range outcomes {
		if o.err != nil {
			slog.Warn("platform collection failed", "keyword_id", keywordID, "platform", o.platform, "error", o.err)
			metrics.RecordPlatformFailure(o.platform)
			failed[o.platform] = o.err.Error()
			continue
		}
		observations = append(observations, o.obs)
	}

	summary := models.CollectionSummary{KeywordID: keywordID}
	if len(failed) > 0 {
		summary.FailedPlatforms = failed
	}

	if len(observations) == 0 {
		res := models.Failure(fmt.Sprintf("all %d platforms failed for keyword %d", len(platforms), keywordID))
		res.Data = summary
		return res
	}

	collectedAt := j.now().UTC()
	rankings := make([]models.Ranking, 0, len(observations))
	for _, obs := range observations {
		r := models.Ranking{
			KeywordID:       keywordID,
			Platform:        obs.Platform,
			Position:        obs.Position,
			VisibilityScore: j.scorer.Contribution(obs),
			CollectedAt:     collectedAt,
		}
		if obs.URL != "" {
			u := obs.URL
			r.URL = &u
		}
		rankings = append(rankings, r)
	}

	// Observations gathered before a job deadline are still committed.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.cfg.CommitTimeout)
	defer cancel()

	saved, err := lock.InsertRankings(commitCtx, rankings)
	if err != nil {
		slog.Error("failed to save rankings", "keyword_id", keywordID, "error", err)
		res := models.Failure(fmt.Sprintf("failed to save rankings: %v", err))
		res.Data = summary
		return res
	}

	summary.VisibilityScore = j.scorer.Score(observations)
	summary.ResultsCount = len(observations)
	summary.RankingsSaved = saved

	return models.Success(
		fmt.Sprintf("collected %d of %d platforms for %q", len(observations), len(platforms), kw.Keyword),
		summary,
	)
}

// collectAll queries every platform concurrently. Each call is isolated: an
// error or panic only affects that platform's outcome.
func (j *CollectionJob) collectAll(ctx context.Context, kw *models.Keyword, platforms []string) []platformOutcome {
	limit := j.cfg.Concurrency
	if limit <= 0 || limit > len(platforms) {
		limit = len(platforms)
	}

	outcomes := make([]platformOutcome, len(platforms))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, name := range platforms {
		outcomes[i].platform = name

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i].err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i].obs, outcomes[i].err = j.collectOne(ctx, kw, name)
		}(i, name)
	}

	wg.Wait()
	return outcomes
}

func (j *CollectionJob) collectOne(ctx context.Context, kw *models.Keyword, name string) (obs models.Observation, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("platform adapter panicked", "platform", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("adapter panicked: %v", r)
		}
	}()

	adapter, err := j.registry.Adapter(name)
	if err != nil {
		return obs, err
	}

	results, err := adapter.Collect(ctx, kw.Keyword, kw.SearchCountry, name)
	if err != nil {
		return obs, err
	}
	return platform.Observe(name, kw.TargetURL, results), nil
}
