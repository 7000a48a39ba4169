package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"seotrack/internal/metrics"
	"seotrack/internal/models"
	"seotrack/internal/queue"
)

type jobConsumer interface {
	Dequeue(ctx context.Context, consumer string, timeout time.Duration) (*queue.Delivery, error)
	Ack(ctx context.Context, d *queue.Delivery) error
	Recover(ctx context.Context, consumer string) (int, error)
}

// WorkerConfig configures one worker.
type WorkerConfig struct {
	// Consumer names the worker's processing list; it must be stable across restarts.
	Consumer    string
	JobTimeout  time.Duration
	PollTimeout time.Duration
}

// Worker pulls jobs off the queue and runs them one at a time. Every job
// that runs to completion stores exactly one result and is acknowledged.
type Worker struct {
	queue   jobConsumer
	results resultSaver
	runner  Runner
	cfg     WorkerConfig
}

// NewWorker creates a worker.
func NewWorker(q jobConsumer, results resultSaver, runner Runner, cfg WorkerConfig) *Worker {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	return &Worker{queue: q, results: results, runner: runner, cfg: cfg}
}

// Serve runs the dequeue loop until ctx is cancelled. Jobs left unacknowledged
// by a previous run of this consumer are requeued first.
func (w *Worker) Serve(ctx context.Context) error {
	n, err := w.queue.Recover(ctx, w.cfg.Consumer)
	if err != nil {
		return fmt.Errorf("%s: recover: %w", w, err)
	}
	if n > 0 {
		slog.Info("requeued unacknowledged jobs", "consumer", w.cfg.Consumer, "count", n)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		d, err := w.queue.Dequeue(ctx, w.cfg.Consumer, w.cfg.PollTimeout)
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrNoJob):
				continue
			case errors.Is(err, queue.ErrMalformedJob):
				slog.Warn("dropped malformed job", "consumer", w.cfg.Consumer, "error", err)
				continue
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				return fmt.Errorf("%s: dequeue: %w", w, err)
			}
		}

		w.process(ctx, d)
	}
}

// String names the worker in supervisor logs.
func (w *Worker) String() string {
	return "worker-" + w.cfg.Consumer
}

func (w *Worker) process(ctx context.Context, d *queue.Delivery) {
	start := time.Now()
	job := d.Job

	res := w.execute(ctx, job)
	if ctx.Err() != nil {
		// Shutting down: leave the job on the processing list for Recover.
		slog.Warn("job interrupted by shutdown", "job_id", job.ID, "kind", job.Kind)
		return
	}

	res.JobID = job.ID.String()
	res.Kind = job.Kind
	res.FinishedAt = time.Now().UTC()
	took := time.Since(start)

	if err := w.results.Save(res); err != nil {
		slog.Error("failed to store job result", "job_id", job.ID, "kind", job.Kind, "error", err)
	}
	metrics.RecordJob(string(job.Kind), string(res.Status), took)

	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.queue.Ack(ackCtx, d); err != nil {
		slog.Error("failed to ack job", "job_id", job.ID, "error", err)
	}

	slog.Info("job finished",
		"consumer", d.Consumer(),
		"job_id", job.ID,
		"kind", job.Kind,
		"status", res.Status,
		"message", res.Message,
		"attempts", job.Attempts,
		"took", took,
	)
}

func (w *Worker) execute(ctx context.Context, job queue.Job) (res models.JobResult) {
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job_id", job.ID, "kind", job.Kind, "panic", r, "stack", string(debug.Stack()))
			res = models.Failure(fmt.Sprintf("job panicked: %v", r))
		}
	}()

	return w.runner.Run(jobCtx, job)
}
