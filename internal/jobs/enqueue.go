package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"seotrack/internal/models"
	"seotrack/internal/queue"
)

type jobPublisher interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type resultSaver interface {
	Save(res models.JobResult) error
}

// Enqueuer turns triggers into queued jobs. Each job gets a pending result
// so its id can be polled before a worker picks it up.
type Enqueuer struct {
	queue   jobPublisher
	results resultSaver
}

// NewEnqueuer creates an enqueuer.
func NewEnqueuer(q jobPublisher, results resultSaver) *Enqueuer {
	return &Enqueuer{queue: q, results: results}
}

// EnqueueCollection queues a collection run for keywordID.
func (e *Enqueuer) EnqueueCollection(ctx context.Context, keywordID int64) (queue.Job, error) {
	return e.enqueue(ctx, models.KindCollection, models.CollectionPayload{KeywordID: keywordID})
}

// EnqueueAnalysis queues a clustering run over keywordIDs.
func (e *Enqueuer) EnqueueAnalysis(ctx context.Context, keywordIDs []int64, target int) (queue.Job, error) {
	return e.enqueue(ctx, models.KindAnalysis, models.AnalysisPayload{
		KeywordIDs:         keywordIDs,
		TargetClusterCount: target,
	})
}

// EnqueueForecast queues a forecast run for keywordID.
func (e *Enqueuer) EnqueueForecast(ctx context.Context, keywordID int64, horizonDays int) (queue.Job, error) {
	return e.enqueue(ctx, models.KindForecast, models.ForecastPayload{
		KeywordID:   keywordID,
		HorizonDays: horizonDays,
	})
}

func (e *Enqueuer) enqueue(ctx context.Context, kind models.JobKind, payload any) (queue.Job, error) {
	job, err := queue.NewJob(kind, payload)
	if err != nil {
		return queue.Job{}, err
	}

	// The pending marker must exist before a worker can overwrite it.
	if err := e.results.Save(models.JobResult{
		JobID:   job.ID.String(),
		Kind:    kind,
		Status:  models.JobPending,
		Message: "queued",
	}); err != nil {
		return queue.Job{}, fmt.Errorf("failed to record pending job: %w", err)
	}

	if err := e.queue.Enqueue(ctx, job); err != nil {
		// The job will never run; replace the pending marker so polls stop waiting.
		failed := models.Failure(fmt.Sprintf("failed to enqueue job: %v", err))
		failed.JobID = job.ID.String()
		failed.Kind = kind
		failed.FinishedAt = time.Now().UTC()
		if saveErr := e.results.Save(failed); saveErr != nil {
			slog.Error("failed to record enqueue failure", "job_id", job.ID, "error", saveErr)
		}
		return queue.Job{}, err
	}
	return job, nil
}
