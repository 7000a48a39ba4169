package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"seotrack/internal/clustering"
	"seotrack/internal/models"
)

// AnalysisStore is the persistence an analysis run needs.
type AnalysisStore interface {
	GetKeywordsByIDs(ctx context.Context, ids []int64) ([]models.Keyword, error)
	SaveClusters(ctx context.Context, clusters []models.ClusterWithKeywords) ([]models.ClusterWithKeywords, error)
}

// AnalysisJob clusters a set of keywords and stores the clusters atomically.
type AnalysisJob struct {
	store     AnalysisStore
	clusterer *clustering.Clusterer
}

// NewAnalysisJob creates an analysis job.
func NewAnalysisJob(store AnalysisStore, clusterer *clustering.Clusterer) *AnalysisJob {
	return &AnalysisJob{store: store, clusterer: clusterer}
}

// Run clusters keywordIDs into at most target clusters. Unknown ids are
// skipped. A target below 1 is degenerate input; callers apply the default.
func (j *AnalysisJob) Run(ctx context.Context, keywordIDs []int64, target int) models.JobResult {
	ids := uniqueIDs(keywordIDs)
	if len(ids) == 0 {
		return models.Failure("no keywords found")
	}

	keywords, err := j.store.GetKeywordsByIDs(ctx, ids)
	if err != nil {
		return models.Failure(fmt.Sprintf("failed to load keywords: %v", err))
	}
	if len(keywords) == 0 {
		return models.Failure("no keywords found")
	}
	if target < 1 {
		return models.Warning(fmt.Sprintf("target cluster count %d is below 1", target), models.AnalysisSummary{})
	}

	assignments := j.clusterer.Cluster(keywords, target)
	if len(assignments) == 0 {
		return models.Warning("not enough distinct keywords to cluster", models.AnalysisSummary{})
	}

	clusters := make([]models.ClusterWithKeywords, len(assignments))
	assigned := 0
	for i, a := range assignments {
		clusters[i] = models.ClusterWithKeywords{
			Cluster: models.Cluster{
				Name:            a.Name,
				Intent:          a.Intent,
				TopicSimilarity: a.TopicSimilarity,
			},
			KeywordIDs: a.KeywordIDs,
		}
		assigned += len(a.KeywordIDs)
	}

	saved, err := j.store.SaveClusters(ctx, clusters)
	if err != nil {
		slog.Error("failed to save clusters", "keywords", len(keywords), "error", err)
		return models.Failure(fmt.Sprintf("failed to save clusters: %v", err))
	}

	return models.Success(
		fmt.Sprintf("created %d clusters from %d keywords", len(saved), assigned),
		models.AnalysisSummary{
			ClustersCreated:  len(saved),
			KeywordsAssigned: assigned,
			Clusters:         saved,
		},
	)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
