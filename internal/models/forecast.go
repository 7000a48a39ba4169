package models

import "time"

// Forecast is a projected rank position for a keyword at a future date.
type Forecast struct {
	ID                int64     `json:"id,omitempty"`
	KeywordID         int64     `json:"keyword_id"`
	PredictedPosition int       `json:"predicted_position"`
	ConfidenceScore   float64   `json:"confidence_score"` // R² clipped to [0,1]
	HistoryPoints     int       `json:"history_points"`
	ForecastDate      time.Time `json:"forecast_date"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}
