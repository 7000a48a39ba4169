package jobs

import (
	"context"
	"errors"
	"fmt"

	"seotrack/internal/models"
	"seotrack/internal/queue"
)

// ErrUnknownKind is returned for a queued job of a kind no job handles.
var ErrUnknownKind = errors.New("unknown job kind")

// Runner executes one queued job and reports its result.
type Runner interface {
	Run(ctx context.Context, job queue.Job) models.JobResult
}

// Dispatcher routes queued jobs to the job for their kind.
type Dispatcher struct {
	Collection *CollectionJob
	Analysis   *AnalysisJob
	Forecast   *ForecastJob
}

// Run decodes job's payload and runs the matching job.
func (d *Dispatcher) Run(ctx context.Context, job queue.Job) models.JobResult {
	res, err := d.dispatch(ctx, job)
	if err != nil {
		return models.Failure(err.Error())
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, job queue.Job) (models.JobResult, error) {
	switch job.Kind {
	case models.KindCollection:
		if d.Collection == nil {
			break
		}
		var p models.CollectionPayload
		if err := job.Decode(&p); err != nil {
			return models.JobResult{}, err
		}
		return d.Collection.Run(ctx, p.KeywordID), nil

	case models.KindAnalysis:
		if d.Analysis == nil {
			break
		}
		var p models.AnalysisPayload
		if err := job.Decode(&p); err != nil {
			return models.JobResult{}, err
		}
		return d.Analysis.Run(ctx, p.KeywordIDs, p.TargetClusterCount), nil

	case models.KindForecast:
		if d.Forecast == nil {
			break
		}
		var p models.ForecastPayload
		if err := job.Decode(&p); err != nil {
			return models.JobResult{}, err
		}
		return d.Forecast.Run(ctx, p.KeywordID, p.HorizonDays), nil
	}

	return models.JobResult{}, fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
}
