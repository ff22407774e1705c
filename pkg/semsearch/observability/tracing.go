package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pkg/semsearch/orchestrator")

// StartSearchSpan opens the root span for one search request.
func StartSearchSpan(ctx context.Context, queryLength int, topK int32, shardKey string, nprobe int32) (context.Context, trace.Span) {
	return tracer.Start(ctx, "search", trace.WithAttributes(
		attribute.Int("search.query_length", queryLength),
		attribute.Int64("search.top_k", int64(topK)),
		attribute.String("search.shard_key", shardKey),
		attribute.Int64("search.nprobe", int64(nprobe)),
	))
}

// FinishSearchSpan sets the result-dependent tags and ends span.
func FinishSearchSpan(span trace.Span, cacheHit bool, resultCount int, totalLatencyMs, searchLatencyMs int64, queryHash string) {
	span.SetAttributes(
		attribute.Bool("search.cache_hit", cacheHit),
		attribute.Int("search.result_count", resultCount),
		attribute.Int64("search.total_latency_ms", totalLatencyMs),
		attribute.Int64("search.search_latency_ms", searchLatencyMs),
		attribute.String("search.query_hash", queryHash),
	)
	span.End()
}

// StartEmbeddingSpan opens the child span around the embedding RPC.
func StartEmbeddingSpan(ctx context.Context, textLength int, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "embedding", trace.WithAttributes(
		attribute.Int("embedding.text_length", textLength),
		attribute.String("embedding.model", model),
	))
}

// FinishEmbeddingSpan sets the dimension tag, known only after the RPC returns.
func FinishEmbeddingSpan(span trace.Span, dimension int32) {
	span.SetAttributes(attribute.Int64("embedding.dimension", int64(dimension)))
	span.End()
}
