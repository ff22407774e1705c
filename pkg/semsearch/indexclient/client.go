// Package indexclient wraps the ANN index backend RPCs with the
// Timeout -> Circuit-Breaker -> Retry resilience chain. Unlike the
// embedding client, SearchIndex degrades gracefully: when the index
// circuit is open it returns an empty-hits result instead of an error.
package indexclient

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

// Client is a resilience-decorated typed wrapper over the IndexBackend RPCs.
type Client struct {
	rpc    vectorpb.IndexBackendClient
	policy *resilience.Policy
}

// New builds a Client.
func New(rpc vectorpb.IndexBackendClient, policy *resilience.Policy) *Client {
	return &Client{rpc: rpc, policy: policy}
}

// SearchResult is the outcome of a Search call, successful or degraded.
type SearchResult struct {
	Hits            []*vectorpb.Hit
	ShardKey        string
	SearchLatencyMs int64
	// Degraded is true when the index circuit was open and Search
	// returned an empty result instead of propagating the error.
	Degraded bool
}

// Search queries the index backend. On circuit-open it returns a
// degraded, empty-hits result with a nil error rather than surfacing
// resilience.ErrOpen -- only the embedding client propagates circuit-open
// as a hard failure.
func (c *Client) Search(ctx context.Context, vector []float32, topK int32, shardKey string, nprobe int32) (*SearchResult, error) {
	v, err := c.policy.Execute(ctx, func(ctx context.Context) (any, error) {
		return c.rpc.SearchIndex(ctx, &vectorpb.SearchIndexRequest{
			Vector:   vector,
			TopK:     topK,
			ShardKey: shardKey,
			Nprobe:   nprobe,
		})
	})
	if err != nil {
		if err == resilience.ErrOpen {
			return &SearchResult{ShardKey: shardKey, Degraded: true}, nil
		}
		return nil, err
	}

	resp := v.(*vectorpb.SearchIndexResponse)
	return &SearchResult{
		Hits:            resp.Hits,
		ShardKey:        resp.ShardKey,
		SearchLatencyMs: resp.SearchLatencyMs,
	}, nil
}

// GetIndexInfo returns the shard descriptors for shardKey, or all shards
// when shardKey is empty. Used by administrative endpoints and the
// readiness probe -- it bypasses the resilience policy so a degraded
// index circuit doesn't mask a genuine probe failure.
func (c *Client) GetIndexInfo(ctx context.Context, shardKey string) ([]*vectorpb.ShardDescriptor, error) {
	resp, err := c.rpc.GetIndexInfo(ctx, &vectorpb.GetIndexInfoRequest{ShardKey: shardKey})
	if err != nil {
		return nil, fmt.Errorf("get index info: %w", err)
	}
	return resp.Shards, nil
}

// ReloadIndex triggers a reload of shardKey (or the default shard, if the
// backend interprets an empty key that way) and passes through the
// backend's result.
func (c *Client) ReloadIndex(ctx context.Context, shardKey string) (*vectorpb.ReloadIndexResponse, error) {
	resp, err := c.rpc.ReloadIndex(ctx, &vectorpb.ReloadIndexRequest{ShardKey: shardKey})
	if err != nil {
		return nil, fmt.Errorf("reload index: %w", err)
	}
	return resp, nil
}

// ReloadAll discovers every known shard via GetIndexInfo and reloads
// them concurrently, fanning out one goroutine per shard and aggregating
// the results. A per-shard failure is folded into Message rather than
// aborting the others.
func (c *Client) ReloadAll(ctx context.Context) (*vectorpb.ReloadIndexResponse, error) {
	shards, err := c.GetIndexInfo(ctx, "")
	if err != nil {
		return nil, err
	}

	type outcome struct {
		shardKey string
		success  bool
		message  string
	}

	outcomes := make([]outcome, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			resp, err := c.ReloadIndex(gctx, shard.ShardKey)
			if err != nil {
				outcomes[i] = outcome{shardKey: shard.ShardKey, success: false, message: err.Error()}
				return nil
			}
			outcomes[i] = outcome{shardKey: shard.ShardKey, success: resp.Success, message: resp.Message}
			return nil
		})
	}
	_ = g.Wait()

	result := &vectorpb.ReloadIndexResponse{Success: true}
	for _, o := range outcomes {
		if o.success {
			result.ReloadedShards = append(result.ReloadedShards, o.shardKey)
		} else {
			result.Success = false
			result.Message += fmt.Sprintf("%s: %s; ", o.shardKey, o.message)
		}
	}
	return result, nil
}
