package models

import "time"

// AbsentPosition is substituted for a missing position when a numeric rank is required.
const AbsentPosition = 100

// Observation is one platform's reported rank for a keyword during a single
// collection run. It is never persisted directly.
type Observation struct {
	Platform string `json:"platform"`
	Position *int   `json:"position"` // nil when the target was not found
	URL      string `json:"url"`
}

// Found returns true if the observation carries a usable 1-based position.
func (o Observation) Found() bool {
	return o.Position != nil && *o.Position > 0
}

// Ranking is the persisted, append-only record of one observation.
type Ranking struct {
	ID              int64     `json:"id"`
	KeywordID       int64     `json:"keyword_id"`
	Platform        string    `json:"platform"`
	Position        *int      `json:"position"`
	VisibilityScore float64   `json:"visibility_score"` // this platform's weighted contribution
	URL             *string   `json:"url"`
	CollectedAt     time.Time `json:"collected_at"`
}

// PositionOr returns the ranking position, or fallback when the position is absent.
func (r *Ranking) PositionOr(fallback int) int {
	if r.Position == nil {
		return fallback
	}
	return *r.Position
}
