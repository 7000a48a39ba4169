package models

import "time"

// Cluster is a group of keywords produced by one clustering run. Clusters are
// never mutated; re-running clustering creates new rows.
type Cluster struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Intent          string    `json:"intent"`
	TopicSimilarity float64   `json:"topic_similarity"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClusterWithKeywords is a cluster together with the keyword ids assigned to it.
type ClusterWithKeywords struct {
	Cluster
	KeywordIDs []int64 `json:"keyword_ids"`
}
