// Package clustering groups keywords into topical clusters by lexical similarity.
//
// Algorithm:
//  1. Vectorize keyword texts with tf-idf over unigrams and bigrams, stop-words removed.
//  2. Pick k = min(target, distinct texts). Fewer than two distinct texts yields no clusters.
//  3. Run seeded k-means on the normalized vectors.
//  4. Emit one cluster per non-empty label, numbered in label order.
package clustering

import (
	"fmt"
	"math/rand"
	"sort"

	"seotrack/internal/models"
)

// Defaults for Config.
const (
	DefaultSeed          = 42
	DefaultMaxIterations = 300
	DefaultTargetCount   = 5
)

// Config controls clustering.
type Config struct {
	Seed          int64
	MaxIterations int
}

// Assignment is one produced cluster and the keywords assigned to it.
type Assignment struct {
	Name            string
	Intent          string
	TopicSimilarity float64
	KeywordIDs      []int64
}

// Clusterer groups keywords with seeded k-means.
type Clusterer struct {
	cfg Config
}

// New creates a clusterer. Zero config values fall back to defaults.
func New(cfg Config) *Clusterer {
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Clusterer{cfg: cfg}
}

// DistinctTexts counts keywords with distinct normalized text.
func DistinctTexts(keywords []models.Keyword) int {
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		seen[normalizeText(kw.Keyword)] = struct{}{}
	}
	return len(seen)
}

// Cluster partitions keywords into at most target clusters. Every keyword is
// assigned to exactly one returned cluster. It returns nil when fewer than two
// distinct keyword texts are given or target is below 1.
func (c *Clusterer) Cluster(keywords []models.Keyword, target int) []Assignment {
	distinct := DistinctTexts(keywords)
	if distinct < 2 {
		return nil
	}
	k := min(target, distinct)
	if k < 1 {
		return nil
	}

	texts := make([]string, len(keywords))
	for i, kw := range keywords {
		texts[i] = kw.Keyword
	}

	vectors, vocab := fitTransform(texts)
	rng := rand.New(rand.NewSource(c.cfg.Seed))
	result := kmeans(vectors, vocab.size(), k, c.cfg.MaxIterations, rng)

	members := make(map[int][]int)
	for i, label := range result.labels {
		members[label] = append(members[label], i)
	}

	labels := make([]int, 0, len(members))
	for label := range members {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	assignments := make([]Assignment, 0, len(labels))
	for n, label := range labels {
		idxs := members[label]
		ids := make([]int64, 0, len(idxs))
		intents := make([]string, 0, len(idxs))
		var similarity float64
		for _, i := range idxs {
			ids = append(ids, keywords[i].ID)
			intents = append(intents, keywords[i].IntentOrEmpty())
			similarity += cosine(vectors[i], result.centroids[label])
		}

		assignments = append(assignments, Assignment{
			Name:            fmt.Sprintf("Cluster %d", n+1),
			Intent:          dominantIntent(intents),
			TopicSimilarity: similarity / float64(len(idxs)),
			KeywordIDs:      ids,
		})
	}

	return assignments
}

// dominantIntent returns the most frequent non-empty intent, or "mixed" when
// there is none or the top count is shared.
func dominantIntent(intents []string) string {
	counts := make(map[string]int)
	for _, intent := range intents {
		if intent != "" {
			counts[intent]++
		}
	}

	best, bestCount, tied := "", 0, false
	for intent, n := range counts {
		switch {
		case n > bestCount:
			best, bestCount, tied = intent, n, false
		case n == bestCount:
			tied = true
		}
	}
	if best == "" || tied {
		return models.IntentMixed
	}
	return best
}
