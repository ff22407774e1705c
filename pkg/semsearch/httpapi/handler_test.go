package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/vectorgw/semsearch/pkg/semsearch/admission"
	"github.com/vectorgw/semsearch/pkg/semsearch/cache"
	"github.com/vectorgw/semsearch/pkg/semsearch/embeddingclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/health"
	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/orchestrator"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/shardrouter"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

type fakeEmbeddingRPC struct {
	fn func() (*vectorpb.EmbedResponse, error)
}

func (f *fakeEmbeddingRPC) GenerateEmbedding(ctx context.Context, in *vectorpb.EmbedRequest, opts ...grpc.CallOption) (*vectorpb.EmbedResponse, error) {
	return f.fn()
}

type fakeIndexRPC struct {
	fn func() (*vectorpb.SearchIndexResponse, error)
}

func (f *fakeIndexRPC) SearchIndex(ctx context.Context, in *vectorpb.SearchIndexRequest, opts ...grpc.CallOption) (*vectorpb.SearchIndexResponse, error) {
	return f.fn()
}

func (f *fakeIndexRPC) GetIndexInfo(ctx context.Context, in *vectorpb.GetIndexInfoRequest, opts ...grpc.CallOption) (*vectorpb.GetIndexInfoResponse, error) {
	return &vectorpb.GetIndexInfoResponse{Shards: []*vectorpb.ShardDescriptor{{ShardKey: "nyc_taxi_2023"}}}, nil
}

func (f *fakeIndexRPC) ReloadIndex(ctx context.Context, in *vectorpb.ReloadIndexRequest, opts ...grpc.CallOption) (*vectorpb.ReloadIndexResponse, error) {
	return &vectorpb.ReloadIndexResponse{Success: true, ReloadedShards: []string{in.ShardKey}}, nil
}

type testServer struct {
	router   *mux.Router
	embedRPC *fakeEmbeddingRPC
	indexRPC *fakeIndexRPC
}

func newTestServer(t *testing.T, rateLimit admission.RateLimitConfig) *testServer {
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

	router := shardrouter.New(shardrouter.Config{DefaultShardKey: "nyc_taxi_2023"})

	embedRPC := &fakeEmbeddingRPC{fn: func() (*vectorpb.EmbedResponse, error) {
		return &vectorpb.EmbedResponse{Vector: []float32{0.1, 0.2}, Dimension: 2}, nil
	}}
	indexRPC := &fakeIndexRPC{fn: func() (*vectorpb.SearchIndexResponse, error) {
		return &vectorpb.SearchIndexResponse{
			Hits:            []*vectorpb.Hit{{Id: 1, Score: 0.9}},
			ShardKey:        "nyc_taxi_2023",
			SearchLatencyMs: 3,
		}, nil
	}}

	embed := embeddingclient.New(embedRPC, resilience.New(resilience.DefaultEmbeddingConfig(), nil, nil), "test-model")
	index := indexclient.New(indexRPC, resilience.New(resilience.DefaultIndexConfig(), nil, nil))

	orch := orchestrator.New(c, router, embed, index, orchestrator.Config{DefaultTopK: 10, DefaultNprobe: 10, ModelName: "test-model"}, nil)
	checker := health.NewChecker(c, index)
	limiter := admission.NewRateLimiter(rateLimit)

	h := NewHandler(orch, index, limiter, checker, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	return &testServer{router: r, embedRPC: embedRPC, indexRPC: indexRPC}
}

func postSearch(t *testing.T, r *mux.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// Cold then warm: second identical query should hit the cache.
func TestScenarioColdThenWarm(t *testing.T) {
	ts := newTestServer(t, admission.RateLimitConfig{PermitLimit: 100, Window: 10 * time.Second, QueueLimit: 50})

	first := postSearch(t, ts.router, `{"query":"taxi ride from JFK","topK":5}`)
	require.Equal(t, http.StatusOK, first.Code)

	var firstResp orchestrator.Response
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.False(t, firstResp.CacheHit)
	require.NotEmpty(t, firstResp.Hits)

	second := postSearch(t, ts.router, `{"query":"taxi ride from JFK","topK":5}`)
	require.Equal(t, http.StatusOK, second.Code)

	var secondResp orchestrator.Response
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	require.True(t, secondResp.CacheHit)
	require.Equal(t, firstResp.QueryHash, secondResp.QueryHash)
}

// Malformed request body is rejected before touching the orchestrator.
func TestScenarioValidationError(t *testing.T) {
	ts := newTestServer(t, admission.DefaultRateLimitConfig())
	rec := postSearch(t, ts.router, `{"query":"","topK":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem problemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Query", problem.Field)
}

// Sustained burst past the configured budget starts getting rejected.
func TestScenarioRateLimitBurst(t *testing.T) {
	ts := newTestServer(t, admission.RateLimitConfig{PermitLimit: 5, Window: time.Minute, QueueLimit: 0})

	var sawTooMany bool
	for i := 0; i < 10; i++ {
		rec := postSearch(t, ts.router, `{"query":"repeat","topK":5}`)
		if rec.Code == http.StatusTooManyRequests {
			sawTooMany = true
		}
	}
	require.True(t, sawTooMany, "expected at least one 429 in the tail of the burst")
}

// Persistent embedding failures surface as a backend-unavailable error.
func TestScenarioEmbeddingOutage(t *testing.T) {
	ts := newTestServer(t, admission.DefaultRateLimitConfig())
	ts.embedRPC.fn = func() (*vectorpb.EmbedResponse, error) {
		return nil, context.DeadlineExceeded
	}

	rec := postSearch(t, ts.router, `{"query":"unique failing query","topK":5}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// Persistent index failures trip the breaker; search then degrades instead of failing.
func TestScenarioIndexOutageDegrades(t *testing.T) {
	ts := newTestServer(t, admission.DefaultRateLimitConfig())
	ts.indexRPC.fn = func() (*vectorpb.SearchIndexResponse, error) {
		return nil, context.DeadlineExceeded
	}

	for i := 0; i < 5; i++ {
		postSearch(t, ts.router, `{"query":"distinct warmup","topK":5}`)
	}

	rec := postSearch(t, ts.router, `{"query":"after breaker opens","topK":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Hits)
	require.False(t, resp.CacheHit)
	require.Equal(t, "nyc_taxi_2023", resp.ShardKey)
	require.Contains(t, rec.Body.String(), `"hits":[]`)
}

// An explicit shardKey overrides the router's default.
func TestScenarioShardOverride(t *testing.T) {
	ts := newTestServer(t, admission.DefaultRateLimitConfig())
	ts.indexRPC.fn = func() (*vectorpb.SearchIndexResponse, error) {
		return &vectorpb.SearchIndexResponse{ShardKey: "nyc_taxi_2022"}, nil
	}

	rec := postSearch(t, ts.router, `{"query":"x","shardKey":"nyc_taxi_2022"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "nyc_taxi_2022", resp.ShardKey)
}

func TestCorrelationIDEchoedOnResponse(t *testing.T) {
	ts := newTestServer(t, admission.DefaultRateLimitConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(`{"query":"x"}`))
	req.Header.Set(admission.CorrelationIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, "caller-supplied-id", rec.Header().Get(admission.CorrelationIDHeader))
}
