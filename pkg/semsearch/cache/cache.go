package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Config configures the cache substrate: redis.keyPrefix,
// redis.defaultCacheTtlSeconds.
type Config struct {
	Redis      RedisConfig
	KeyPrefix  string        `yaml:"key_prefix"`
	DefaultTTL time.Duration `yaml:"default_cache_ttl_seconds"`
	WriteBack  WriteBackConfig
}

// DefaultConfig returns the documented defaults: "vc:" prefix, 300s TTL.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "vc:",
		DefaultTTL: 300 * time.Second,
		WriteBack:  DefaultWriteBackConfig(),
	}
}

// Cache is the failure-tolerant, JSON-serializing cache substrate the
// orchestrator reads and writes through. Every method is safe to call
// even when the underlying Redis connection is unreachable: get degrades
// to a miss, set degrades to a logged no-op.
type Cache struct {
	client *RedisClient
	prefix string
	ttl    time.Duration
	writer *backgroundWriter
	logger log.Logger
}

// New builds a Cache bound to an already-constructed Redis client.
func New(cfg Config, client *RedisClient, logger log.Logger) *Cache {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Cache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.DefaultTTL,
		writer: newBackgroundWriter(client, cfg.WriteBack, logger),
		logger: logger,
	}
}

// Fingerprint derives the cache key for a request.
func (c *Cache) Fingerprint(query string, topK int, shardKey string) string {
	return Fingerprint(query, topK, shardKey)
}

func (c *Cache) namespaced(fingerprint string) string {
	return c.prefix + fingerprint
}

// Get decodes the cached value for fingerprint into out and reports true,
// or reports false on a miss, a deserialization failure, or any
// cache-subsystem error -- it never returns an error to the caller.
func (c *Cache) Get(ctx context.Context, fingerprint string, out any) bool {
	raw, err := c.client.Get(ctx, c.namespaced(fingerprint))
	if err != nil {
		if !IsMiss(err) {
			level.Warn(c.logger).Log("msg", "cache get failed", "fingerprint", fingerprint, "err", err)
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		level.Warn(c.logger).Log("msg", "cache value deserialization failed", "fingerprint", fingerprint, "err", err)
		return false
	}

	return true
}

// Set writes value synchronously with ttl (0 selects the configured
// default). Any subsystem error is swallowed and logged.
func (c *Cache) Set(ctx context.Context, fingerprint string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	buf, err := json.Marshal(value)
	if err != nil {
		level.Warn(c.logger).Log("msg", "cache value serialization failed", "fingerprint", fingerprint, "err", err)
		return
	}

	if err := c.client.Set(ctx, c.namespaced(fingerprint), buf, ttl); err != nil {
		level.Warn(c.logger).Log("msg", "cache set failed", "fingerprint", fingerprint, "err", err)
	}
}

// SetAsync enqueues a fire-and-forget write that runs on an independent,
// non-cancellable context: the caller's request cancellation must not
// abort this write, and queuing must not add latency to the response path.
func (c *Cache) SetAsync(fingerprint string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	buf, err := json.Marshal(value)
	if err != nil {
		level.Warn(c.logger).Log("msg", "cache value serialization failed", "fingerprint", fingerprint, "err", err)
		return
	}

	c.writer.enqueue(writeJob{key: c.namespaced(fingerprint), value: buf, ttl: ttl})
}

// Delete removes fingerprint, reporting whether it existed.
func (c *Cache) Delete(ctx context.Context, fingerprint string) bool {
	ok, err := c.client.Delete(ctx, c.namespaced(fingerprint))
	if err != nil {
		level.Warn(c.logger).Log("msg", "cache delete failed", "fingerprint", fingerprint, "err", err)
		return false
	}
	return ok
}

// Ping is used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close drains the background write queue and releases the connection.
func (c *Cache) Close() error {
	c.writer.stop()
	return c.client.Close()
}
