package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"seotrack/internal/models"
)

// ErrResultNotFound is returned for a job id with no stored result.
var ErrResultNotFound = errors.New("job result not found")

const resultPrefix = "result:"

// kvStore is the subset of a fiber storage the result store uses.
type kvStore interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// ResultStore keeps job results by job id until the TTL expires.
type ResultStore struct {
	store kvStore
	ttl   time.Duration
}

// NewResultStore creates a result store. ttl <= 0 keeps results forever.
func NewResultStore(store kvStore, ttl time.Duration) *ResultStore {
	if ttl < 0 {
		ttl = 0
	}
	return &ResultStore{store: store, ttl: ttl}
}

// Save stores res under its job id, replacing any earlier value.
func (s *ResultStore) Save(res models.JobResult) error {
	if res.JobID == "" {
		return errors.New("job result has no job id")
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}
	if err := s.store.Set(resultPrefix+res.JobID, raw, s.ttl); err != nil {
		return fmt.Errorf("failed to store job result %s: %w", res.JobID, err)
	}
	return nil
}

// Get returns the stored result for jobID.
func (s *ResultStore) Get(jobID string) (*models.JobResult, error) {
	raw, err := s.store.Get(resultPrefix + jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job result %s: %w", jobID, err)
	}
	if len(raw) == 0 {
		return nil, ErrResultNotFound
	}

	var res models.JobResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode job result %s: %w", jobID, err)
	}
	return &res, nil
}
