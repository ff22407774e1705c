package cache

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig configures the Redis client backing the cache substrate.
// Endpoint is a comma-separated list so a single-node and cluster
// deployment share one config type.
type RedisConfig struct {
	Endpoint   string        `yaml:"connection_string"`
	Timeout    time.Duration `yaml:"timeout"`
	Expiration time.Duration `yaml:"default_cache_ttl_seconds"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	TLSEnabled bool          `yaml:"tls_enabled"`
}

// RedisClient wraps go-redis, presenting a single-node or cluster client
// behind one interface depending on how many addresses Endpoint contains.
type RedisClient struct {
	cmdable redis.Cmdable
	timeout time.Duration
}

// NewRedisClient builds a RedisClient from cfg. A comma-separated Endpoint
// selects cluster mode; a single address selects a plain client.
func NewRedisClient(cfg *RedisConfig) *RedisClient {
	addrs := strings.Split(cfg.Endpoint, ",")

	var tlsConfig *tls.Config
	if cfg.TLSEnabled {
		tlsConfig = &tls.Config{}
	}

	var cmdable redis.Cmdable
	if len(addrs) > 1 {
		cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:     addrs,
			Password:  cfg.Password,
			TLSConfig: tlsConfig,
		})
	} else {
		cmdable = redis.NewClient(&redis.Options{
			Addr:      addrs[0],
			Password:  cfg.Password,
			DB:        cfg.DB,
			TLSConfig: tlsConfig,
		})
	}

	return &RedisClient{cmdable: cmdable, timeout: cfg.Timeout}
}

func (c *RedisClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Get fetches a single value. A missing key is reported as redis.Nil.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	val, err := c.cmdable.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set writes a single value with the given TTL.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.cmdable.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key, reporting whether it existed.
func (c *RedisClient) Delete(ctx context.Context, key string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.cmdable.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity, used by the readiness probe.
func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.cmdable.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisClient) Close() error {
	if closer, ok := c.cmdable.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// IsMiss reports whether err represents a cache miss rather than a
// subsystem failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}
