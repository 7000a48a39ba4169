package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seotrack/internal/db"
	"seotrack/internal/queue"
)

var (
	rankingsDesc = prometheus.NewDesc(
		"seotrack_rankings_total",
		"Stored ranking observations by platform and whether the target URL was found",
		[]string{"platform", "found"},
		nil,
	)

	queueDepthDesc = prometheus.NewDesc(
		"seotrack_queue_pending_jobs",
		"Jobs waiting in the pending queue",
		nil,
		nil,
	)

	// JobsTotal counts finished jobs by kind and status.
	JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seotrack_jobs_total",
		Help: "Finished jobs by kind and status",
	}, []string{"kind", "status"})

	// JobDuration observes job run time by kind.
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seotrack_job_duration_seconds",
		Help:    "Job run time by kind",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"kind"})

	// PlatformFailures counts failed platform collections.
	PlatformFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seotrack_platform_failures_total",
		Help: "Failed platform collections by platform",
	}, []string{"platform"})

	// BreakerState is 0 closed, 1 half-open, 2 open per platform.
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "seotrack_platform_breaker_state",
		Help: "Platform circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"platform"})
)

type rankingCounter interface {
	CountRankingsByPlatform(ctx context.Context) ([]db.PlatformRankingCount, error)
}

// RankingCollector is a custom Prometheus collector that reads ranking counts
// from the database on each scrape.
type RankingCollector struct {
	db rankingCounter
}

// NewRankingCollector creates a collector reading from database.
func NewRankingCollector(database rankingCounter) *RankingCollector {
	return &RankingCollector{db: database}
}

// Describe sends the metric descriptor to the channel.
func (c *RankingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rankingsDesc
}

// Collect queries the database for ranking counts and emits them as counters.
func (c *RankingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.db.CountRankingsByPlatform(ctx)
	if err != nil {
		slog.Error("failed to collect ranking metrics", "error", err)
		return
	}
	for _, rc := range counts {
		ch <- prometheus.MustNewConstMetric(
			rankingsDesc,
			prometheus.CounterValue,
			float64(rc.Count),
			rc.Platform,
			strconv.FormatBool(rc.Found),
		)
	}
}

type queueLength interface {
	Len(ctx context.Context) (int64, error)
}

// QueueCollector reports the pending queue depth on each scrape.
type QueueCollector struct {
	queue queueLength
}

// NewQueueCollector creates a collector reading from q.
func NewQueueCollector(q queueLength) *QueueCollector {
	return &QueueCollector{queue: q}
}

// Describe sends the metric descriptor to the channel.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueDepthDesc
}

// Collect reads the pending queue length.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := c.queue.Len(ctx)
	if err != nil {
		slog.Error("failed to collect queue depth", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(queueDepthDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers the collectors with the default registry. The database and
// queue collectors are registered only when non-nil, so one process exports
// them. Must be called once at startup; later calls are no-ops.
func Init(database *db.DB, jobs *queue.Queue) {
	initOnce.Do(func() {
		prometheus.MustRegister(JobsTotal, JobDuration, PlatformFailures, BreakerState)
		if database != nil {
			prometheus.MustRegister(NewRankingCollector(database))
		}
		if jobs != nil {
			prometheus.MustRegister(NewQueueCollector(jobs))
		}
	})
}

// RecordJob records a finished job.
func RecordJob(kind, status string, took time.Duration) {
	JobsTotal.WithLabelValues(kind, status).Inc()
	JobDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// RecordPlatformFailure records one failed platform collection.
func RecordPlatformFailure(platform string) {
	PlatformFailures.WithLabelValues(platform).Inc()
}

// SetBreakerState records a platform's breaker state.
func SetBreakerState(platform string, state float64) {
	BreakerState.WithLabelValues(platform).Set(state)
}
