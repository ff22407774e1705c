package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/vectorgw/semsearch/pkg/semsearch/cache"
	"github.com/vectorgw/semsearch/pkg/semsearch/embeddingclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/shardrouter"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

// fakeEmbeddingClient lets each test script canned responses/errors.
type fakeEmbeddingClient struct {
	calls int
	fn    func(calls int) (*vectorpb.EmbedResponse, error)
}

func (f *fakeEmbeddingClient) GenerateEmbedding(ctx context.Context, in *vectorpb.EmbedRequest, opts ...grpc.CallOption) (*vectorpb.EmbedResponse, error) {
	f.calls++
	return f.fn(f.calls)
}

// fakeIndexClient scripts SearchIndex; GetIndexInfo/ReloadIndex aren't
// exercised by the orchestrator so they return zero values.
type fakeIndexClient struct {
	calls        int
	lastShardKey string
	fn           func(calls int) (*vectorpb.SearchIndexResponse, error)
}

func (f *fakeIndexClient) SearchIndex(ctx context.Context, in *vectorpb.SearchIndexRequest, opts ...grpc.CallOption) (*vectorpb.SearchIndexResponse, error) {
	f.calls++
	f.lastShardKey = in.ShardKey
	return f.fn(f.calls)
}

func (f *fakeIndexClient) GetIndexInfo(ctx context.Context, in *vectorpb.GetIndexInfoRequest, opts ...grpc.CallOption) (*vectorpb.GetIndexInfoResponse, error) {
	return &vectorpb.GetIndexInfoResponse{}, nil
}

func (f *fakeIndexClient) ReloadIndex(ctx context.Context, in *vectorpb.ReloadIndexRequest, opts ...grpc.CallOption) (*vectorpb.ReloadIndexResponse, error) {
	return &vectorpb.ReloadIndexResponse{}, nil
}

type harness struct {
	orch     *Orchestrator
	embedRPC *fakeEmbeddingClient
	indexRPC *fakeIndexClient
	redis    *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Endpoint: strings.Join([]string{srv.Addr()}, ","),
		Timeout:  200 * time.Millisecond,
	})
	c := cache.New(cache.DefaultConfig(), redisClient, nil)
	t.Cleanup(func() { _ = c.Close() })

	router := shardrouter.New(shardrouter.Config{DefaultShardKey: "default_shard"})

	embedRPC := &fakeEmbeddingClient{fn: func(int) (*vectorpb.EmbedResponse, error) {
		return &vectorpb.EmbedResponse{Vector: []float32{0.1, 0.2}, Dimension: 2, ModelName: "test-model"}, nil
	}}
	indexRPC := &fakeIndexClient{fn: func(int) (*vectorpb.SearchIndexResponse, error) {
		return &vectorpb.SearchIndexResponse{
			Hits: []*vectorpb.Hit{
				{Id: 1, Score: 0.5},
				{Id: 2, Score: 0.9},
			},
			ShardKey:        "default_shard",
			SearchLatencyMs: 7,
		}, nil
	}}

	embedPolicy := resilience.New(resilience.DefaultEmbeddingConfig(), nil, nil)
	indexPolicy := resilience.New(resilience.DefaultIndexConfig(), nil, nil)

	embed := embeddingclient.New(embedRPC, embedPolicy, "test-model")
	index := indexclient.New(indexRPC, indexPolicy)

	orch := New(c, router, embed, index, Config{DefaultTopK: 10, DefaultNprobe: 10, ModelName: "test-model"}, nil)

	return &harness{orch: orch, embedRPC: embedRPC, indexRPC: indexRPC, redis: srv}
}

func TestSearchColdThenWarm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.orch.Search(ctx, Request{Query: "taxi ride from JFK", TopK: 5})
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.NotEmpty(t, first.Hits)
	require.Equal(t, 1, h.embedRPC.calls)
	require.Equal(t, 1, h.indexRPC.calls)

	second, err := h.orch.Search(ctx, Request{Query: "taxi ride from JFK", TopK: 5})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.QueryHash, second.QueryHash)
	require.Equal(t, first.Hits, second.Hits)
	// the backends must not be invoked again on a cache hit
	require.Equal(t, 1, h.embedRPC.calls)
	require.Equal(t, 1, h.indexRPC.calls)
}

func TestSearchOrdersHitsByDescendingScoreThenAscendingID(t *testing.T) {
	h := newHarness(t)
	h.indexRPC.fn = func(int) (*vectorpb.SearchIndexResponse, error) {
		return &vectorpb.SearchIndexResponse{
			Hits: []*vectorpb.Hit{
				{Id: 3, Score: 0.5},
				{Id: 1, Score: 0.9},
				{Id: 2, Score: 0.9},
			},
			ShardKey: "default_shard",
		}, nil
	}

	resp, err := h.orch.Search(context.Background(), Request{Query: "x", TopK: 5})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, []int64{resp.Hits[0].ID, resp.Hits[1].ID, resp.Hits[2].ID})
}

func TestSearchEmbeddingUnavailableFailsRequest(t *testing.T) {
	h := newHarness(t)
	h.embedRPC.fn = func(int) (*vectorpb.EmbedResponse, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := h.orch.Search(context.Background(), Request{Query: "x", TopK: 5})
	require.Error(t, err)
}

func TestSearchShardOverrideIsPassedThrough(t *testing.T) {
	h := newHarness(t)
	h.indexRPC.fn = func(int) (*vectorpb.SearchIndexResponse, error) {
		return &vectorpb.SearchIndexResponse{ShardKey: "nyc_taxi_2022"}, nil
	}

	resp, err := h.orch.Search(context.Background(), Request{Query: "x", ShardKey: "nyc_taxi_2022"})
	require.NoError(t, err)
	require.Equal(t, "nyc_taxi_2022", h.indexRPC.lastShardKey)
	require.Equal(t, "nyc_taxi_2022", resp.ShardKey)
}

func TestSearchDegradesOnIndexCircuitOpenWithoutCachingIt(t *testing.T) {
	h := newHarness(t)
	h.indexRPC.fn = func(int) (*vectorpb.SearchIndexResponse, error) {
		return nil, context.DeadlineExceeded
	}

	// drive the index breaker open: 5 requests, >=50% transient failures
	for i := 0; i < 5; i++ {
		_, _ = h.orch.Search(context.Background(), Request{Query: fmt.Sprintf("distinct query %d", i), TopK: 5})
	}

	resp, err := h.orch.Search(context.Background(), Request{Query: "warm query after open", TopK: 5})
	require.NoError(t, err)
	require.Empty(t, resp.Hits)
	require.False(t, resp.CacheHit)
	require.Equal(t, "default_shard", resp.ShardKey)

	// the degraded response must not have been cached
	var out cachedPayload
	require.False(t, h.orch.cache.Get(context.Background(), resp.QueryHash, &out))
}
