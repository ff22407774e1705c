package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/vectorgw/semsearch/pkg/semsearch/admission"
	"github.com/vectorgw/semsearch/pkg/semsearch/cache"
	"github.com/vectorgw/semsearch/pkg/semsearch/orchestrator"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/shardrouter"
)

// Config is the root config for the semantic search gateway.
type Config struct {
	HTTPListenAddress string `yaml:"http_listen_address"`
	HTTPListenPort    int    `yaml:"http_listen_port"`

	// SidecarGRPCAddress is the host:port shared by both the embedding
	// and index backend sidecars (sidecarGrpcAddress).
	SidecarGRPCAddress string `yaml:"sidecar_grpc_address"`
	EmbeddingModelName string `yaml:"embedding_model_name"`

	Redis          cache.RedisConfig `yaml:"redis"`
	CacheKeyPrefix string            `yaml:"redis_key_prefix"`
	CacheTTL       time.Duration     `yaml:"redis_default_cache_ttl_seconds"`

	DefaultTopK     int32  `yaml:"faiss_default_top_k"`
	DefaultNprobe   int32  `yaml:"faiss_default_nprobe"`
	DefaultShardKey string `yaml:"faiss_default_shard_key"`

	RateLimit admission.RateLimitConfig `yaml:"rate_limit"`

	EmbeddingResilience resilience.Config `yaml:"-"`
	IndexResilience     resilience.Config `yaml:"-"`
}

// NewDefaultConfig creates a new Config with default values applied.
func NewDefaultConfig() *Config {
	defaultConfig := &Config{}
	defaultFS := flag.NewFlagSet("", flag.PanicOnError)
	defaultConfig.RegisterFlagsAndApplyDefaults("", defaultFS)
	return defaultConfig
}

// RegisterFlagsAndApplyDefaults registers flags and sets default values:
// a single method wires both CLI flags and the documented defaults.
func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.HTTPListenAddress, prefix+"server.http-listen-address", "0.0.0.0", "HTTP server listen address.")
	f.IntVar(&c.HTTPListenPort, prefix+"server.http-listen-port", 8080, "HTTP server listen port.")

	f.StringVar(&c.SidecarGRPCAddress, prefix+"backend.grpc-address", "127.0.0.1:9090", "Host:port shared by the embedding and index backend sidecars.")
	f.StringVar(&c.EmbeddingModelName, prefix+"embedding.model-name", "all-MiniLM-L6-v2", "Embedding model name pinned for this gateway.")

	f.StringVar(&c.Redis.Endpoint, prefix+"redis.connection-string", "127.0.0.1:6379", "Cache endpoint (comma-separated for a cluster).")
	f.DurationVar(&c.Redis.Timeout, prefix+"redis.timeout", 500*time.Millisecond, "Per-call Redis timeout.")
	f.StringVar(&c.CacheKeyPrefix, prefix+"redis.key-prefix", "vc:", "String prepended to every cache key.")
	f.DurationVar(&c.CacheTTL, prefix+"redis.default-cache-ttl", 300*time.Second, "Default TTL for cache writes.")

	f.Var(newInt32Value(10, &c.DefaultTopK), prefix+"faiss.default-top-k", "Fallback topK when a request omits it.")
	f.Var(newInt32Value(10, &c.DefaultNprobe), prefix+"faiss.default-nprobe", "Fallback nprobe when a request omits it.")
	f.StringVar(&c.DefaultShardKey, prefix+"faiss.default-shard-key", "default_shard", "Shard used when a request omits shardKey.")

	f.IntVar(&c.RateLimit.PermitLimit, prefix+"rate-limit.permit-limit", 100, "Requests admitted per window.")
	f.DurationVar(&c.RateLimit.Window, prefix+"rate-limit.window", 10*time.Second, "Rate limit window length.")
	f.IntVar(&c.RateLimit.QueueLimit, prefix+"rate-limit.queue-limit", 50, "Additional requests admitted before rejection.")

	c.EmbeddingResilience = resilience.DefaultEmbeddingConfig()
	c.IndexResilience = resilience.DefaultIndexConfig()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.SidecarGRPCAddress == "" {
		return errSidecarAddressRequired
	}
	if c.Redis.Endpoint == "" {
		return errRedisEndpointRequired
	}
	if c.DefaultShardKey == "" {
		return errDefaultShardKeyRequired
	}
	return nil
}

// ConfigWarning bundles message and explanation strings in one structure.
type ConfigWarning struct {
	Message string
	Explain string
}

// CheckConfig checks if config values are suspect and returns a bundled
// list of warnings and explanations.
func (c *Config) CheckConfig() []ConfigWarning {
	var warnings []ConfigWarning

	if c.RateLimit.PermitLimit < 1 {
		warnings = append(warnings, ConfigWarning{
			Message: "rate_limit.permit_limit is less than 1",
			Explain: "every request beyond the queue limit will be rejected",
		})
	}
	if c.CacheTTL <= 0 {
		warnings = append(warnings, ConfigWarning{
			Message: "redis_default_cache_ttl_seconds is zero or negative",
			Explain: "cache writes will expire immediately, defeating the cache",
		})
	}

	return warnings
}

var (
	errSidecarAddressRequired  = fmt.Errorf("backend.grpc-address must be set")
	errRedisEndpointRequired   = fmt.Errorf("redis.connection-string must be set")
	errDefaultShardKeyRequired = fmt.Errorf("faiss.default-shard-key must be set")
)

// ExampleConfig returns an example configuration YAML.
func ExampleConfig() string {
	return `# Semantic Search Gateway Configuration
http_listen_address: "0.0.0.0"
http_listen_port: 8080

sidecar_grpc_address: "sidecar.internal:9090"
embedding_model_name: "all-MiniLM-L6-v2"

redis:
  connection_string: "cache-1.internal:6379,cache-2.internal:6379"
  timeout: 500ms
  password: ""
  db: 0
  tls_enabled: false

redis_key_prefix: "vc:"
redis_default_cache_ttl_seconds: 300s

faiss_default_top_k: 10
faiss_default_nprobe: 10
faiss_default_shard_key: "nyc_taxi_2023"

rate_limit:
  permit_limit: 100
  window_seconds: 10s
  queue_limit: 50
`
}

// orchestratorConfig derives orchestrator.Config from c.
func (c *Config) orchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		DefaultTopK:   c.DefaultTopK,
		DefaultNprobe: c.DefaultNprobe,
		ModelName:     c.EmbeddingModelName,
	}
}

// shardRouterConfig derives shardrouter.Config from c.
func (c *Config) shardRouterConfig() shardrouter.Config {
	return shardrouter.Config{DefaultShardKey: c.DefaultShardKey}
}

// cacheConfig derives cache.Config from c.
func (c *Config) cacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Redis = c.Redis
	cfg.KeyPrefix = c.CacheKeyPrefix
	cfg.DefaultTTL = c.CacheTTL
	return cfg
}
