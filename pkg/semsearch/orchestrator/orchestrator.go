// Package orchestrator implements the search request-handling pipeline:
// shard resolution, cache-aside lookup, embedding, ANN search, hit
// assembly, and fire-and-forget cache population. It is the single place
// that ties the cache, shard router, embedding client, and index client
// together.
package orchestrator

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vectorgw/semsearch/pkg/semsearch/apierror"
	"github.com/vectorgw/semsearch/pkg/semsearch/cache"
	"github.com/vectorgw/semsearch/pkg/semsearch/embeddingclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/observability"
	"github.com/vectorgw/semsearch/pkg/semsearch/shardrouter"
)

// Request is the validated input to a search. Validation itself is the
// admission layer's job; by the time a Request reaches the orchestrator
// its fields are known-good.
type Request struct {
	Query    string
	TopK     int32
	ShardKey string
	Nprobe   int32
}

// Hit is a single ranked result.
type Hit struct {
	ID       int64          `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// Response is the orchestrator's output.
type Response struct {
	Hits            []Hit  `json:"hits"`
	ShardKey        string `json:"shardKey"`
	SearchLatencyMs int64  `json:"searchLatencyMs"`
	TotalLatencyMs  int64  `json:"totalLatencyMs"`
	CacheHit        bool   `json:"cacheHit"`
	QueryHash       string `json:"queryHash"`
}

// Config carries the per-request fallbacks the orchestrator applies when
// a field is omitted (faiss.defaultTopK, faiss.defaultNprobe).
type Config struct {
	DefaultTopK   int32
	DefaultNprobe int32
	ModelName     string
}

// Orchestrator wires the cache substrate, shard router, and the two
// resilience-decorated backend clients into the search algorithm. All
// four collaborators are injected through the constructor -- explicit
// construction, no hidden globals.
type Orchestrator struct {
	cache  *cache.Cache
	router *shardrouter.Router
	embed  *embeddingclient.Client
	index  *indexclient.Client
	cfg    Config
	logger log.Logger
}

// New builds an Orchestrator from its collaborators.
func New(c *cache.Cache, router *shardrouter.Router, embed *embeddingclient.Client, index *indexclient.Client, cfg Config, logger log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Orchestrator{cache: c, router: router, embed: embed, index: index, cfg: cfg, logger: logger}
}

// cachedPayload is the value stored in the cache. cacheHit and
// totalLatencyMs are deliberately excluded -- they're overwritten per
// read: a cache hit always reports cacheHit true and a freshly measured
// totalLatencyMs, while searchLatencyMs carries the original
// backend-reported value.
type cachedPayload struct {
	Hits            []Hit  `json:"hits"`
	ShardKey        string `json:"shardKey"`
	SearchLatencyMs int64  `json:"searchLatencyMs"`
	QueryHash       string `json:"queryHash"`
}

// Search runs the full pipeline for req and returns the assembled
// response, or an *apierror.Error describing why it could not.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	// Step 1: shard resolution.
	shardKey := o.router.ResolveOne(req.ShardKey)

	topK := req.TopK
	if topK <= 0 {
		topK = o.cfg.DefaultTopK
	}
	nprobe := req.Nprobe
	if nprobe <= 0 {
		nprobe = o.cfg.DefaultNprobe
	}

	ctx, span := observability.StartSearchSpan(ctx, len(req.Query), topK, shardKey, nprobe)
	observability.SearchStarted()
	defer observability.SearchFinished()
	defer func() {
		observability.RecordSearchDuration(time.Since(start).Seconds())
	}()

	// Step 2: fingerprint derivation.
	fingerprint := o.cache.Fingerprint(req.Query, int(topK), shardKey)

	// Step 3: cache lookup.
	var cached cachedPayload
	if o.cache.Get(ctx, fingerprint, &cached) {
		observability.RecordCacheOutcome(true)
		resp := &Response{
			Hits:            cached.Hits,
			ShardKey:        cached.ShardKey,
			SearchLatencyMs: cached.SearchLatencyMs,
			TotalLatencyMs:  time.Since(start).Milliseconds(),
			CacheHit:        true,
			QueryHash:       cached.QueryHash,
		}
		observability.FinishSearchSpan(span, true, len(resp.Hits), resp.TotalLatencyMs, resp.SearchLatencyMs, resp.QueryHash)
		return resp, nil
	}
	observability.RecordCacheOutcome(false)

	// Step 4: embed. The embedding client never degrades -- any failure
	// (retries exhausted, or the circuit open) becomes backend-unavailable.
	embedStart := time.Now()
	embedResult, err := o.embed.Embed(ctx, req.Query)
	observability.RecordEmbeddingDuration(time.Since(embedStart).Seconds())
	if err != nil {
		span.End()
		return nil, apierror.BackendUnavailable("embedding", err)
	}

	// Step 5: search. The index client itself converts circuit-open into
	// a degraded, empty-hits result -- the orchestrator just has to avoid
	// caching it.
	searchResult, err := o.index.Search(ctx, embedResult.Vector, topK, shardKey, nprobe)
	if err != nil {
		span.End()
		return nil, apierror.BackendUnavailable("index", err)
	}

	if searchResult.Degraded {
		resp := &Response{
			Hits:           []Hit{},
			ShardKey:       searchResult.ShardKey,
			TotalLatencyMs: time.Since(start).Milliseconds(),
			CacheHit:       false,
			QueryHash:      fingerprint,
		}
		observability.FinishSearchSpan(span, false, 0, resp.TotalLatencyMs, 0, resp.QueryHash)
		return resp, nil
	}

	// Step 6: assemble hits, tolerating per-hit metadata deserialization
	// failures -- recovered locally and logged, never fails the request.
	hits := make([]Hit, 0, len(searchResult.Hits))
	for _, h := range searchResult.Hits {
		hits = append(hits, Hit{ID: h.Id, Score: h.Score, Metadata: o.decodeMetadata(h.MetadataJson)})
	}
	sortHits(hits)

	resp := &Response{
		Hits:            hits,
		ShardKey:        searchResult.ShardKey,
		SearchLatencyMs: searchResult.SearchLatencyMs,
		TotalLatencyMs:  time.Since(start).Milliseconds(),
		CacheHit:        false,
		QueryHash:       fingerprint,
	}
	observability.FinishSearchSpan(span, false, len(resp.Hits), resp.TotalLatencyMs, resp.SearchLatencyMs, resp.QueryHash)

	// Step 7: fire-and-forget cache population. Uses the cache's own
	// async path, which runs on an independent, non-cancellable context --
	// this call must not block or extend response latency.
	o.cache.SetAsync(fingerprint, cachedPayload{
		Hits:            resp.Hits,
		ShardKey:        resp.ShardKey,
		SearchLatencyMs: resp.SearchLatencyMs,
		QueryHash:       resp.QueryHash,
	}, 0)

	// Step 8.
	return resp, nil
}

func (o *Orchestrator) decodeMetadata(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		level.Warn(o.logger).Log("msg", "hit metadata deserialization failed", "err", err)
		return map[string]any{}
	}
	return m
}

// sortHits orders hits by descending score, ties broken by ascending id.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
