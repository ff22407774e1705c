// Package shardrouter maps a request's shard hint to the shard key the
// index backend should actually be queried with. Cross-shard fan-out is
// out of scope for this revision; ResolveMany exists so the
// orchestrator's call site does not need to change when that capability
// is added.
package shardrouter

// Config configures the default shard used when a request omits
// shardKey (faiss.defaultShardKey).
type Config struct {
	DefaultShardKey string
}

// Router resolves shard hints to shard keys.
type Router struct {
	defaultShardKey string
}

// New builds a Router with the configured default shard key.
func New(cfg Config) *Router {
	return &Router{defaultShardKey: cfg.DefaultShardKey}
}

// ResolveOne returns requestedKey verbatim when non-empty, else the
// configured default.
func (r *Router) ResolveOne(requestedKey string) string {
	if requestedKey != "" {
		return requestedKey
	}
	return r.defaultShardKey
}

// ResolveMany returns the shard keys a request should fan out to. It
// currently always returns a singleton -- cross-shard re-ranking is out
// of scope for this revision; the signature is kept plural so the
// orchestrator's call site survives that extension.
func (r *Router) ResolveMany(requestedKey string) []string {
	return []string{r.ResolveOne(requestedKey)}
}
