// Package embeddingclient wraps the embedding backend RPC with the
// Timeout -> Circuit-Breaker -> Retry resilience chain. It does not
// degrade: an unavailable embedder fails the request.
package embeddingclient

import (
	"context"

	"github.com/vectorgw/semsearch/pkg/semsearch/observability"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

// Client is a resilience-decorated typed wrapper over
// EmbeddingBackend.GenerateEmbedding.
type Client struct {
	rpc       vectorpb.EmbeddingBackendClient
	policy    *resilience.Policy
	modelName string
}

// New builds a Client. modelName is pinned by gateway configuration --
// callers never choose the embedding model per request.
func New(rpc vectorpb.EmbeddingBackendClient, policy *resilience.Policy, modelName string) *Client {
	return &Client{rpc: rpc, policy: policy, modelName: modelName}
}

// Result is the outcome of a successful embedding call.
type Result struct {
	Vector    []float32
	Dimension int32
	ModelName string
	LatencyMs int64
}

// Embed generates an embedding for text. ctx cancellation propagates to
// the underlying RPC. The returned error is resilience.ErrOpen when the
// embedding circuit is open, or the underlying RPC error after retries
// are exhausted -- the caller (the orchestrator) is responsible for
// mapping either into apierror.BackendUnavailable; this client never
// degrades on its own.
func (c *Client) Embed(ctx context.Context, text string) (*Result, error) {
	ctx, span := observability.StartEmbeddingSpan(ctx, len(text), c.modelName)

	v, err := c.policy.Execute(ctx, func(ctx context.Context) (any, error) {
		return c.rpc.GenerateEmbedding(ctx, &vectorpb.EmbedRequest{
			Text:      text,
			ModelName: c.modelName,
		})
	})
	if err != nil {
		span.End()
		return nil, err
	}

	resp := v.(*vectorpb.EmbedResponse)
	observability.FinishEmbeddingSpan(span, resp.Dimension)
	return &Result{
		Vector:    resp.Vector,
		Dimension: resp.Dimension,
		ModelName: resp.ModelName,
		LatencyMs: resp.LatencyMs,
	}, nil
}
