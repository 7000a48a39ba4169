package jobs

import (
	"context"
	"errors"
	"fmt"

	"seotrack/internal/db"
	"seotrack/internal/forecast"
	"seotrack/internal/models"
)

// ForecastStore is the persistence a forecast run needs.
type ForecastStore interface {
	GetKeyword(ctx context.Context, id int64) (*models.Keyword, error)
	RankingHistory(ctx context.Context, keywordID int64) ([]models.Ranking, error)
	SaveForecast(ctx context.Context, f *models.Forecast) error
}

// ForecastJob projects a keyword's future position from its ranking history.
type ForecastJob struct {
	store      ForecastStore
	forecaster *forecast.Forecaster
}

// NewForecastJob creates a forecast job.
func NewForecastJob(store ForecastStore, forecaster *forecast.Forecaster) *ForecastJob {
	return &ForecastJob{store: store, forecaster: forecaster}
}

// Run forecasts keywordID horizonDays ahead and stores the forecast.
func (j *ForecastJob) Run(ctx context.Context, keywordID int64, horizonDays int) models.JobResult {
	if _, err := j.store.GetKeyword(ctx, keywordID); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return models.Failure(fmt.Sprintf("keyword %d not found", keywordID))
		}
		return models.Failure(fmt.Sprintf("failed to load keyword %d: %v", keywordID, err))
	}

	history, err := j.store.RankingHistory(ctx, keywordID)
	if err != nil {
		return models.Failure(fmt.Sprintf("failed to load ranking history: %v", err))
	}

	f, err := j.forecaster.Forecast(keywordID, history, horizonDays)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			return models.Warning(err.Error(), map[string]int{
				"history_points":  len(history),
				"required_points": forecast.MinHistoryPoints,
			})
		}
		return models.Failure(fmt.Sprintf("forecast failed: %v", err))
	}

	if err := j.store.SaveForecast(ctx, f); err != nil {
		return models.Failure(fmt.Sprintf("failed to save forecast: %v", err))
	}

	return models.Success(
		fmt.Sprintf("forecast position %d on %s", f.PredictedPosition, f.ForecastDate.Format("2006-01-02")),
		f,
	)
}
