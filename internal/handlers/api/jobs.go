package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seotrack/internal/clustering"
	"seotrack/internal/forecast"
	"seotrack/internal/models"
	"seotrack/internal/queue"
	"seotrack/internal/validation"
)

type jobEnqueuer interface {
	EnqueueCollection(ctx context.Context, keywordID int64) (queue.Job, error)
	EnqueueAnalysis(ctx context.Context, keywordIDs []int64, target int) (queue.Job, error)
	EnqueueForecast(ctx context.Context, keywordID int64, horizonDays int) (queue.Job, error)
}

type resultReader interface {
	Get(jobID string) (*models.JobResult, error)
}

// JobHandler triggers jobs and reports their results via JSON API.
type JobHandler struct {
	jobs    jobEnqueuer
	results resultReader
}

// NewJobHandler creates a new API job handler.
func NewJobHandler(jobs jobEnqueuer, results resultReader) *JobHandler {
	return &JobHandler{jobs: jobs, results: results}
}

// Collection queues a collection run for one keyword.
func (h *JobHandler) Collection(c fiber.Ctx) error {
	var body models.CollectionRequest
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	job, err := h.jobs.EnqueueCollection(c.Context(), body.KeywordID)
	if err != nil {
		slog.Error("failed to enqueue collection", "keyword_id", body.KeywordID, "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "failed to enqueue job")
	}
	return accepted(c, job)
}

// Analysis queues a clustering run over a set of keywords.
func (h *JobHandler) Analysis(c fiber.Ctx) error {
	var body models.AnalysisRequest
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.TargetClusterCount == 0 {
		body.TargetClusterCount = clustering.DefaultTargetCount
	}

	job, err := h.jobs.EnqueueAnalysis(c.Context(), body.KeywordIDs, body.TargetClusterCount)
	if err != nil {
		slog.Error("failed to enqueue analysis", "keywords", len(body.KeywordIDs), "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "failed to enqueue job")
	}
	return accepted(c, job)
}

// Forecast queues a forecast run for one keyword.
func (h *JobHandler) Forecast(c fiber.Ctx) error {
	var body models.ForecastRequest
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.HorizonDays == 0 {
		body.HorizonDays = forecast.DefaultHorizonDays
	}

	job, err := h.jobs.EnqueueForecast(c.Context(), body.KeywordID, body.HorizonDays)
	if err != nil {
		slog.Error("failed to enqueue forecast", "keyword_id", body.KeywordID, "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "failed to enqueue job")
	}
	return accepted(c, job)
}

// Get returns a job's result, or 202 while it has not finished.
func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid job id")
	}

	res, err := h.results.Get(id.String())
	if err != nil {
		if errors.Is(err, queue.ErrResultNotFound) {
			return jsonError(c, fiber.StatusNotFound, "job not found")
		}
		slog.Error("failed to load job result", "job_id", id, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch job result")
	}

	if !res.Status.IsTerminal() {
		return jsonAccepted(c, models.JobStatusResponse{JobID: id.String(), Status: models.JobPending})
	}
	return jsonSuccess(c, res)
}

func decodeBody(c fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid request body")
	}
	return validation.Struct(v)
}

func accepted(c fiber.Ctx, job queue.Job) error {
	return jsonAccepted(c, models.EnqueueResponse{
		JobID:      job.ID.String(),
		Kind:       job.Kind,
		EnqueuedAt: job.EnqueuedAt,
	})
}
