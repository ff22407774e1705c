package admission

import (
	"sync"
	"time"
)

// RateLimitConfig configures the fixed-window limiter: permitLimit,
// windowSeconds, and queueLimit.
type RateLimitConfig struct {
	PermitLimit int           `yaml:"permit_limit"`
	Window      time.Duration `yaml:"window_seconds"`
	QueueLimit  int           `yaml:"queue_limit"`
}

// DefaultRateLimitConfig returns the documented defaults: 100 permits
// over a 10s window, with 50 queued before rejection.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{PermitLimit: 100, Window: 10 * time.Second, QueueLimit: 50}
}

// RateLimiter is a fixed-window limiter shared by all callers,
// process-scoped. A window admits up to PermitLimit+QueueLimit requests
// before the (N+1)-th is rejected; admission beyond PermitLimit models
// queued, still-accepted load, not a distinct execution path -- this
// revision doesn't defer or reorder requests, it only counts them.
type RateLimiter struct {
	mu          sync.Mutex
	cfg         RateLimitConfig
	windowStart time.Time
	count       int
}

// NewRateLimiter builds a RateLimiter with cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg, windowStart: time.Now()}
}

// Allow reports whether the caller may proceed. It resets the window
// when the configured duration has elapsed since the window began.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.windowStart) >= r.cfg.Window {
		r.windowStart = now
		r.count = 0
	}

	if r.count >= r.cfg.PermitLimit+r.cfg.QueueLimit {
		return false
	}

	r.count++
	return true
}
