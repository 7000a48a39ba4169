package models

import "time"

// EnqueueResponse is returned when a job has been accepted for asynchronous execution.
type EnqueueResponse struct {
	JobID      string    `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// JobStatusResponse reports a job that has not produced a result yet.
type JobStatusResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}
