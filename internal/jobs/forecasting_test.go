package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"seotrack/internal/forecast"
	"seotrack/internal/models"
)

func historyOf(positions ...int) []models.Ranking {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Ranking, len(positions))
	for i, p := range positions {
		out[i] = models.Ranking{
			KeywordID:   1,
			Platform:    "google",
			Position:    intPtr(p),
			CollectedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}
	return out
}

func newForecastJob(store ForecastStore) *ForecastJob {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	return NewForecastJob(store, forecast.NewWithClock(func() time.Time { return now }))
}

func TestForecastJob_Success(t *testing.T) {
	store := newFakeStore(seoKeyword())
	store.history[1] = historyOf(10, 10, 10, 10, 10, 10)

	res := newForecastJob(store).Run(context.Background(), 1, 0)

	if res.Status != models.JobSuccess {
		t.Fatalf("Status = %v (%s), want success", res.Status, res.Message)
	}
	if len(store.forecasts) != 1 {
		t.Fatalf("SaveForecast called %d times, want 1", len(store.forecasts))
	}
	f := res.Data.(*models.Forecast)
	if f.PredictedPosition != 10 || f.ConfidenceScore != 1 {
		t.Errorf("forecast = %+v, want position 10 confidence 1", f)
	}
	wantDate := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	if !f.ForecastDate.Equal(wantDate) {
		t.Errorf("ForecastDate = %v, want %v", f.ForecastDate, wantDate)
	}
}

func TestForecastJob_InsufficientData(t *testing.T) {
	store := newFakeStore(seoKeyword())
	store.history[1] = historyOf(3, 4, 5, 6)

	res := newForecastJob(store).Run(context.Background(), 1, 30)

	if res.Status != models.JobWarning {
		t.Errorf("Status = %v, want warning", res.Status)
	}
	if res.Message != "not enough data for forecast" {
		t.Errorf("Message = %q", res.Message)
	}
	if len(store.forecasts) != 0 {
		t.Errorf("SaveForecast called %d times, want 0", len(store.forecasts))
	}
}

func TestForecastJob_UnknownKeyword(t *testing.T) {
	res := newForecastJob(newFakeStore()).Run(context.Background(), 5, 30)
	if res.Status != models.JobError {
		t.Errorf("Status = %v, want error", res.Status)
	}
}

func TestForecastJob_SaveFailure(t *testing.T) {
	store := newFakeStore(seoKeyword())
	store.history[1] = historyOf(1, 2, 3, 4, 5)
	store.saveErr = errors.New("disk full")

	res := newForecastJob(store).Run(context.Background(), 1, 30)
	if res.Status != models.JobError {
		t.Errorf("Status = %v, want error", res.Status)
	}
}
