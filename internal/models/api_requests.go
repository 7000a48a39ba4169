package models

// CollectionRequest triggers a collection run.
type CollectionRequest struct {
	KeywordID int64 `json:"keyword_id" validate:"required,gt=0"`
}

// AnalysisRequest triggers a clustering run. TargetClusterCount defaults to 5.
type AnalysisRequest struct {
	KeywordIDs         []int64 `json:"keyword_ids" validate:"required,min=1,max=10000,dive,gt=0"`
	TargetClusterCount int     `json:"target_cluster_count" validate:"omitempty,gte=1,lte=100"`
}

// ForecastRequest triggers a forecast run. HorizonDays defaults to 30.
type ForecastRequest struct {
	KeywordID   int64 `json:"keyword_id" validate:"required,gt=0"`
	HorizonDays int   `json:"horizon_days" validate:"omitempty,gte=1,lte=365"`
}
