// Package forecast projects a keyword's future rank position from its ranking
// history with an ordinary least-squares trend line.
//
// This is a local linear extrapolation. It does not model seasonality or
// causes of rank changes.
package forecast

import (
	"errors"
	"math"
	"time"

	"seotrack/internal/models"
)

// Defaults for the forecaster.
const (
	MinHistoryPoints   = 5
	DefaultHorizonDays = 30
)

// ErrInsufficientData is returned when the history has fewer than MinHistoryPoints rankings.
var ErrInsufficientData = errors.New("not enough data for forecast")

// Forecaster fits a trend line through ranking history.
type Forecaster struct {
	now func() time.Time
}

// New creates a forecaster using the wall clock.
func New() *Forecaster {
	return &Forecaster{now: time.Now}
}

// NewWithClock creates a forecaster with an injected clock.
func NewWithClock(now func() time.Time) *Forecaster {
	return &Forecaster{now: now}
}

// Forecast predicts the rank position horizonDays from now.
//
// x is the collected-at unix time in seconds, y the position (AbsentPosition
// when not found). The prediction is rounded and floored at 1. Confidence is
// the fit's R² clipped to [0,1].
func (f *Forecaster) Forecast(keywordID int64, history []models.Ranking, horizonDays int) (*models.Forecast, error) {
	if len(history) < MinHistoryPoints {
		return nil, ErrInsufficientData
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i := range history {
		xs[i] = float64(history[i].CollectedAt.UnixNano()) / 1e9
		ys[i] = float64(history[i].PositionOr(models.AbsentPosition))
	}

	fit := leastSquares(xs, ys)

	target := f.now().Add(time.Duration(horizonDays) * 24 * time.Hour)
	predicted := fit.predict(float64(target.UnixNano()) / 1e9)

	return &models.Forecast{
		KeywordID:         keywordID,
		PredictedPosition: int(math.Max(1, math.Round(predicted))),
		ConfidenceScore:   math.Max(0, math.Min(1, fit.r2)),
		HistoryPoints:     len(history),
		ForecastDate:      target,
	}, nil
}

// line is a fitted y = intercept + slope*(x - xMean).
type line struct {
	xMean     float64
	intercept float64
	slope     float64
	r2        float64
}

func (l line) predict(x float64) float64 {
	return l.intercept + l.slope*(x-l.xMean)
}

// leastSquares fits an OLS line. x is centred before fitting to keep epoch
// seconds from swamping the slope. Constant x yields a flat line at mean(y).
func leastSquares(xs, ys []float64) line {
	n := float64(len(xs))
	var xMean, yMean float64
	for i := range xs {
		xMean += xs[i]
		yMean += ys[i]
	}
	xMean /= n
	yMean /= n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - xMean
		sxx += dx * dx
		sxy += dx * (ys[i] - yMean)
	}

	l := line{xMean: xMean, intercept: yMean}
	if sxx > 0 {
		l.slope = sxy / sxx
	}

	var ssRes, ssTot float64
	for i := range xs {
		r := ys[i] - l.predict(xs[i])
		ssRes += r * r
		d := ys[i] - yMean
		ssTot += d * d
	}

	switch {
	case ssTot > 0:
		l.r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		l.r2 = 1
	default:
		l.r2 = 0
	}
	return l
}
