// Package scoring turns per-platform rank observations into a single 0-100
// visibility value.
package scoring

import (
	"math"
	"sort"
	"strings"

	"seotrack/internal/models"
)

// DefaultPlatformWeight applies to platforms missing from the weight table.
const DefaultPlatformWeight = 0.5

// Weights is the per-platform weight table used by the scorer.
type Weights struct {
	Platforms map[string]float64
	Default   float64
}

// DefaultWeights returns the built-in weight table.
func DefaultWeights() Weights {
	return Weights{
		Platforms: map[string]float64{
			"google":     1.0,
			"bing":       0.8,
			"youtube":    0.7,
			"gemini":     0.9,
			"chatgpt":    0.85,
			"perplexity": 0.75,
		},
		Default: DefaultPlatformWeight,
	}
}

// NewWeights builds a weight table with lowercased platform keys.
func NewWeights(platforms map[string]float64, def float64) Weights {
	w := Weights{Platforms: make(map[string]float64, len(platforms)), Default: def}
	for name, weight := range platforms {
		w.Platforms[strings.ToLower(strings.TrimSpace(name))] = weight
	}
	return w
}

// For returns the weight for a platform, falling back to the default weight.
func (w Weights) For(platform string) float64 {
	if weight, ok := w.Platforms[strings.ToLower(platform)]; ok {
		return weight
	}
	return w.Default
}

// Len returns the number of entries in the weight table.
func (w Weights) Len() int {
	return len(w.Platforms)
}

// Names returns the recognized platform names in sorted order.
func (w Weights) Names() []string {
	names := make([]string, 0, len(w.Platforms))
	for name := range w.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scorer computes visibility scores from a weight table.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer for the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Weights returns the scorer's weight table.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// RawScore maps a 1-based position to 100 - 5*position, floored at 0.
// Non-positive positions score 0.
func RawScore(position int) float64 {
	if position <= 0 {
		return 0
	}
	return math.Max(0, float64(100-5*position))
}

// Contribution returns the weighted score of a single observation.
// Observations without a position contribute 0.
func (s *Scorer) Contribution(obs models.Observation) float64 {
	if !obs.Found() {
		return 0
	}
	return RawScore(*obs.Position) * s.weights.For(obs.Platform)
}

// Score aggregates observations into a visibility value in [0,100].
//
// The sum of contributions is divided by the size of the weight table, not by
// the number of observed platforms, so sparse platform coverage lowers the score.
func (s *Scorer) Score(observations []models.Observation) float64 {
	if len(observations) == 0 || s.weights.Len() == 0 {
		return 0
	}

	var total float64
	for _, obs := range observations {
		total += s.Contribution(obs)
	}

	return clamp(total/float64(s.weights.Len()), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
