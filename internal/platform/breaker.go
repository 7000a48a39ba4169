package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Limits paces requests to one platform. Rate <= 0 means unlimited.
type Limits struct {
	Rate  float64
	Burst int
}

// BreakerConfig tunes the per-platform circuit breakers.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long an open breaker rejects calls before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probe calls allowed while half-open.
	HalfOpenRequests uint32
	// OnStateChange is called after every transition, if set.
	OnStateChange func(platform string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used by the worker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         time.Minute,
		HalfOpenRequests:    1,
	}
}

// BreakerAdapter wraps an adapter with one circuit breaker and one rate
// limiter per platform. A failing platform is short-circuited without
// affecting the others.
type BreakerAdapter struct {
	next   Adapter
	cfg    BreakerConfig
	limits map[string]Limits
	deflt  Limits

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]Result]
	limiters map[string]*rate.Limiter
}

// NewBreakerAdapter wraps next. limits holds per-platform pacing; platforms
// missing from it use deflt.
func NewBreakerAdapter(next Adapter, cfg BreakerConfig, limits map[string]Limits, deflt Limits) *BreakerAdapter {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	return &BreakerAdapter{
		next:     next,
		cfg:      cfg,
		limits:   limits,
		deflt:    deflt,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]Result]),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Collect waits for the platform's limiter, then calls the wrapped adapter
// through the platform's breaker.
func (b *BreakerAdapter) Collect(ctx context.Context, keyword, country, platform string) ([]Result, error) {
	cb, limiter := b.get(platform)

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", platform, err)
	}

	results, err := cb.Execute(func() ([]Result, error) {
		return b.next.Collect(ctx, keyword, country, platform)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s circuit breaker: %w", platform, err)
		}
		return nil, err
	}
	return results, nil
}

// State returns the breaker state for platform.
func (b *BreakerAdapter) State(platform string) gobreaker.State {
	cb, _ := b.get(platform)
	return cb.State()
}

func (b *BreakerAdapter) get(platform string) (*gobreaker.CircuitBreaker[[]Result], *rate.Limiter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[platform]
	if !ok {
		cb = gobreaker.NewCircuitBreaker[[]Result](gobreaker.Settings{
			Name:        platform,
			MaxRequests: b.cfg.HalfOpenRequests,
			Timeout:     b.cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= b.cfg.ConsecutiveFailures
			},
			// A caller giving up is not the platform's fault.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("platform circuit breaker state change", "platform", name, "from", from.String(), "to", to.String())
				if b.cfg.OnStateChange != nil {
					b.cfg.OnStateChange(name, from, to)
				}
			},
		})
		b.breakers[platform] = cb
	}

	limiter, ok := b.limiters[platform]
	if !ok {
		l, found := b.limits[platform]
		if !found {
			l = b.deflt
		}
		limit := rate.Inf
		if l.Rate > 0 {
			limit = rate.Limit(l.Rate)
		}
		burst := l.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(limit, burst)
		b.limiters[platform] = limiter
	}

	return cb, limiter
}
