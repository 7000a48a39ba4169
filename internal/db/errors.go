package db

import "errors"

// Domain-level database error sentinels.
var (
	// Keyword errors
	ErrKeywordNotFound = errors.New("keyword not found")

	// Ranking errors
	ErrNoRankings = errors.New("no rankings to insert")

	// Cluster errors
	ErrEmptyCluster = errors.New("cluster has no keywords")
)
