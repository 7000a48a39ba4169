// Package queue moves jobs between the API and the workers over Redis lists
// and keeps each job's result until it expires.
//
// A job is pushed onto the pending list and atomically moved onto a
// per-consumer processing list when dequeued. It leaves the processing list
// only when acknowledged, so a consumer that dies mid-job leaves it behind to
// be recovered on restart. Delivery is at-least-once.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"seotrack/internal/models"
)

var (
	// ErrNoJob is returned by Dequeue when no job arrived before the timeout.
	ErrNoJob = errors.New("no job available")
	// ErrMalformedJob is returned for a queued message that cannot be decoded.
	ErrMalformedJob = errors.New("malformed job")
)

const (
	pendingKey       = "seotrack:jobs:pending"
	processingPrefix = "seotrack:jobs:processing:"
)

// Job is the queued envelope of one job run.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Kind       models.JobKind  `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// NewJob builds a job with a fresh id and payload encoded as JSON.
func NewJob(kind models.JobKind, payload any) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return Job{
		ID:         uuid.New(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the job payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", j.Kind, err)
	}
	return nil
}

// Delivery is a dequeued job still owned by its consumer.
type Delivery struct {
	Job      Job
	consumer string
	raw      string
}

// Consumer returns the name of the consumer holding the delivery.
func (d *Delivery) Consumer() string {
	return d.consumer
}

// listClient is the subset of the go-redis client the queue uses.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLMove(ctx context.Context, source, destination, srcpos, destpos string, timeout time.Duration) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LRem(ctx context.Context, key string, count int64, value interface{}) *redis.IntCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Queue is a Redis list backed job queue.
type Queue struct {
	client listClient
}

// New creates a queue on the given Redis client.
func New(client listClient) *Queue {
	return &Queue{client: client}
}

// Enqueue pushes a job onto the pending list.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, pendingKey, raw).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the oldest pending job and moves it onto
// the consumer's processing list. It returns ErrNoJob on timeout.
func (q *Queue) Dequeue(ctx context.Context, consumer string, timeout time.Duration) (*Delivery, error) {
	raw, err := q.client.BLMove(ctx, pendingKey, processingKey(consumer), "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJob
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Unreadable messages would be recovered forever; drop them.
		if remErr := q.client.LRem(ctx, processingKey(consumer), 1, raw).Err(); remErr != nil {
			slog.Error("failed to drop malformed job", "consumer", consumer, "error", remErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	return &Delivery{Job: job, consumer: consumer, raw: raw}, nil
}

// Ack removes a finished delivery from its consumer's processing list.
func (q *Queue) Ack(ctx context.Context, d *Delivery) error {
	if err := q.client.LRem(ctx, processingKey(d.consumer), 1, d.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", d.Job.ID, err)
	}
	return nil
}

// Recover moves every unacknowledged job of consumer back onto the pending
// list with its attempt count incremented. It returns the number of jobs moved.
func (q *Queue) Recover(ctx context.Context, consumer string) (int, error) {
	key := processingKey(consumer)
	stale, err := q.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list processing jobs: %w", err)
	}

	moved := 0
	for _, raw := range stale {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err == nil {
			job.Attempts++
			if err := q.Enqueue(ctx, job); err != nil {
				return moved, err
			}
			moved++
		}
		if err := q.client.LRem(ctx, key, 1, raw).Err(); err != nil {
			return moved, fmt.Errorf("failed to clear processing job: %w", err)
		}
	}
	return moved, nil
}

// Len returns the number of pending jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, pendingKey).Result()
}

// Ping checks the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func processingKey(consumer string) string {
	return processingPrefix + consumer
}
