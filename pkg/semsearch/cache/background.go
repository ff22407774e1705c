package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// writeJob is one queued fire-and-forget cache write.
type writeJob struct {
	key   string
	value []byte
	ttl   time.Duration
}

// backgroundWriter drains queued cache writes on a small pool of
// goroutines using an independent, non-cancellable context: a client
// disconnect must not abort a cache population write already in flight.
type backgroundWriter struct {
	client *RedisClient
	logger log.Logger
	jobs   chan writeJob
	wg     sync.WaitGroup
}

// WriteBackConfig bounds the fire-and-forget write-back queue.
type WriteBackConfig struct {
	Goroutines int
	BufferSize int
}

// DefaultWriteBackConfig returns sane defaults for a single gateway instance.
func DefaultWriteBackConfig() WriteBackConfig {
	return WriteBackConfig{Goroutines: 4, BufferSize: 1000}
}

func newBackgroundWriter(client *RedisClient, cfg WriteBackConfig, logger log.Logger) *backgroundWriter {
	if cfg.Goroutines <= 0 {
		cfg.Goroutines = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}

	w := &backgroundWriter{
		client: client,
		logger: logger,
		jobs:   make(chan writeJob, cfg.BufferSize),
	}

	w.wg.Add(cfg.Goroutines)
	for i := 0; i < cfg.Goroutines; i++ {
		go w.loop()
	}

	return w
}

func (w *backgroundWriter) loop() {
	defer w.wg.Done()
	for job := range w.jobs {
		// Independent, non-cancellable context: the request that queued
		// this write may already have returned to its client.
		ctx := context.Background()
		if err := w.client.Set(ctx, job.key, job.value, job.ttl); err != nil {
			level.Warn(w.logger).Log("msg", "background cache write failed", "key", job.key, "err", err)
		}
	}
}

// enqueue queues a write without blocking the caller. If the buffer is
// full the write is dropped and logged rather than blocking the request
// path -- cache population is strictly best-effort.
func (w *backgroundWriter) enqueue(job writeJob) {
	select {
	case w.jobs <- job:
	default:
		level.Warn(w.logger).Log("msg", "cache write-back buffer full, dropping write", "key", job.key)
	}
}

// stop closes the job channel and waits for in-flight writes to drain.
func (w *backgroundWriter) stop() {
	close(w.jobs)
	w.wg.Wait()
}
