package db

import (
	"context"

	"seotrack/internal/models"
)

// SaveForecast inserts a forecast row. Forecasts are never updated in place.
func (d *DB) SaveForecast(ctx context.Context, f *models.Forecast) error {
	return d.Pool.QueryRow(ctx, `
		INSERT INTO forecasts (keyword_id, predicted_position, confidence_score, history_points, forecast_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, f.KeywordID, f.PredictedPosition, f.ConfidenceScore, f.HistoryPoints, f.ForecastDate).Scan(&f.ID, &f.CreatedAt)
}
