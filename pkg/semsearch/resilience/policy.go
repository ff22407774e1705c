// Package resilience composes the Timeout -> Circuit-Breaker -> Retry
// decorator chain each outbound backend call is wrapped in. Policies are
// process-wide singletons: one per backend, shared by all callers.
package resilience

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/sony/gobreaker"
)

// Config configures one backend's resilience policy.
type Config struct {
	// Name identifies the backend for logging and the OnStateChange callback.
	Name string
	// Timeout is the outer wall-clock cap for the whole call (including
	// all retries). 10s for embedding, 5s for index search.
	Timeout time.Duration
	// BreakerInterval is the rolling window used to evaluate failure rate.
	BreakerInterval time.Duration
	// BreakerMinThroughput is the minimum number of evaluated requests
	// before the breaker will consider tripping.
	BreakerMinThroughput uint32
	// BreakerFailureRatio is the fraction of evaluated requests that must
	// fail with a transient error to trip the breaker open.
	BreakerFailureRatio float64
	// BreakerOpenDuration is how long the breaker stays open before
	// admitting a half-open probe.
	BreakerOpenDuration time.Duration
}

// DefaultEmbeddingConfig returns the policy configuration for the
// embedding backend: a 10s timeout.
func DefaultEmbeddingConfig() Config {
	return Config{
		Name:                 "embedding",
		Timeout:              10 * time.Second,
		BreakerInterval:      10 * time.Second,
		BreakerMinThroughput: 5,
		BreakerFailureRatio:  0.5,
		BreakerOpenDuration:  30 * time.Second,
	}
}

// DefaultIndexConfig returns the policy configuration for the index
// backend: a 5s timeout.
func DefaultIndexConfig() Config {
	cfg := DefaultEmbeddingConfig()
	cfg.Name = "index"
	cfg.Timeout = 5 * time.Second
	return cfg
}

// StateGauge is notified every time a backend's breaker transitions
// state, so callers can drive a `circuit_breaker_open` gauge without
// this package depending on the metrics package.
type StateGauge func(backend string, open bool)

// Policy is the Timeout -> Circuit-Breaker -> Retry composition for one
// backend. All fields are safe for concurrent use; a Policy is built once
// at process start and shared by every request.
type Policy struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  log.Logger
}

// New builds a Policy for the given backend configuration.
func New(cfg Config, logger log.Logger, onState StateGauge) *Policy {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinThroughput {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// Only transient backend failures count against the breaker;
			// validation-style errors from the operation don't belong to
			// the dependency's health.
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			level.Info(logger).Log("msg", "circuit breaker state change", "backend", name, "from", from, "to", to)
			if onState != nil {
				onState(name, to == gobreaker.StateOpen)
			}
		},
	}

	return &Policy{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log.With(logger, "backend", cfg.Name),
	}
}

// ErrOpen is returned when the circuit breaker is open and the execution
// is rejected without attempting the underlying operation.
var ErrOpen = gobreaker.ErrOpenState

// Execute runs op under the Timeout -> Circuit-Breaker -> Retry chain.
// The returned error is gobreaker.ErrOpenState when the breaker rejects
// the call outright; otherwise it is op's own error, possibly after
// MaxRetries transient retries.
func (p *Policy) Execute(ctx context.Context, op func(ctx context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	return p.breaker.Execute(func() (any, error) {
		return withRetry(ctx, op)
	})
}

// State returns the current breaker state. The circuit_breaker_open
// gauge is driven by the OnStateChange callback, not by this method.
func (p *Policy) State() gobreaker.State {
	return p.breaker.State()
}
