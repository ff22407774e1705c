// Package health implements the liveness and readiness probes: /live
// never checks dependencies, /ready checks the cache and index backend
// with a short deadline.
package health

import (
	"context"
	"time"

	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
)

// Pinger is satisfied by the cache substrate.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeDeadline bounds each dependency check in Ready.
const ProbeDeadline = 3 * time.Second

// Status is the outcome of a readiness check.
type Status struct {
	Healthy bool
	Reason  string
}

// Checker runs the readiness probe against its injected dependencies.
type Checker struct {
	cache Pinger
	index *indexclient.Client
}

// NewChecker builds a Checker bound to the process's cache and index client.
func NewChecker(cache Pinger, index *indexclient.Client) *Checker {
	return &Checker{cache: cache, index: index}
}

// Live always reports healthy while the process is running; it never
// checks dependencies.
func Live() Status {
	return Status{Healthy: true}
}

// Ready probes the cache and index backend, each bounded by
// ProbeDeadline. Any dependency reporting unavailable, or any unexpected
// error, marks the process not-ready; both map to a 503 response.
func (c *Checker) Ready(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, ProbeDeadline)
	defer cancel()

	if err := c.cache.Ping(ctx); err != nil {
		return Status{Healthy: false, Reason: "cache unavailable: " + err.Error()}
	}

	if _, err := c.index.GetIndexInfo(ctx, ""); err != nil {
		return Status{Healthy: false, Reason: "index backend unavailable: " + err.Error()}
	}

	return Status{Healthy: true}
}
