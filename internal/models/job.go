package models

import "time"

// JobStatus is the terminal outcome of a job.
type JobStatus string

// Job status constants
const (
	JobSuccess JobStatus = "success"
	JobWarning JobStatus = "warning"
	JobError   JobStatus = "error"
	JobPending JobStatus = "pending" // not terminal, reported while no result is stored
)

// JobKind identifies which job a queued message runs.
type JobKind string

// Job kind constants
const (
	KindCollection JobKind = "collection"
	KindAnalysis   JobKind = "analysis"
	KindForecast   JobKind = "forecast"
)

// JobResult is reported exactly once by every job run.
type JobResult struct {
	JobID      string    `json:"job_id,omitempty"`
	Kind       JobKind   `json:"kind,omitempty"`
	Status     JobStatus `json:"status"`
	Message    string    `json:"message"`
	Data       any       `json:"data,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// IsTerminal returns true if the status is one of success, warning or error.
func (s JobStatus) IsTerminal() bool {
	return s == JobSuccess || s == JobWarning || s == JobError
}

// Success builds a success result.
func Success(message string, data any) JobResult {
	return JobResult{Status: JobSuccess, Message: message, Data: data}
}

// Warning builds a warning result.
func Warning(message string, data any) JobResult {
	return JobResult{Status: JobWarning, Message: message, Data: data}
}

// Failure builds an error result.
func Failure(message string) JobResult {
	return JobResult{Status: JobError, Message: message}
}

// CollectionPayload is the queued argument of a collection job.
type CollectionPayload struct {
	KeywordID int64 `json:"keyword_id"`
}

// AnalysisPayload is the queued argument of an analysis job.
type AnalysisPayload struct {
	KeywordIDs         []int64 `json:"keyword_ids"`
	TargetClusterCount int     `json:"target_cluster_count"`
}

// ForecastPayload is the queued argument of a forecast job.
type ForecastPayload struct {
	KeywordID   int64 `json:"keyword_id"`
	HorizonDays int   `json:"horizon_days"`
}

// CollectionSummary is the data attached to a collection job result.
type CollectionSummary struct {
	KeywordID       int64             `json:"keyword_id"`
	VisibilityScore float64           `json:"visibility_score"`
	ResultsCount    int               `json:"results_count"`
	RankingsSaved   int               `json:"rankings_saved"`
	FailedPlatforms map[string]string `json:"failed_platforms,omitempty"`
}

// AnalysisSummary is the data attached to an analysis job result.
type AnalysisSummary struct {
	ClustersCreated  int                   `json:"clusters_created"`
	KeywordsAssigned int                   `json:"keywords_assigned"`
	Clusters         []ClusterWithKeywords `json:"clusters,omitempty"`
}
