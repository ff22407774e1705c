// Package httpapi wires the gateway's HTTP surface: request/response
// mapping, RFC 7807 error bodies, and correlation-id propagation.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vectorgw/semsearch/pkg/semsearch/admission"
	"github.com/vectorgw/semsearch/pkg/semsearch/apierror"
	"github.com/vectorgw/semsearch/pkg/semsearch/health"
	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/orchestrator"
)

// Handler implements the gateway's HTTP endpoints.
type Handler struct {
	orch    *orchestrator.Orchestrator
	index   *indexclient.Client
	limiter *admission.RateLimiter
	checker *health.Checker
	logger  log.Logger
}

// NewHandler builds a Handler from its collaborators.
func NewHandler(orch *orchestrator.Orchestrator, index *indexclient.Client, limiter *admission.RateLimiter, checker *health.Checker, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Handler{orch: orch, index: index, limiter: limiter, checker: checker, logger: logger}
}

// RegisterRoutes registers every gateway endpoint on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/search", h.SearchHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/index/info", h.IndexInfoHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/index/reload", h.IndexReloadHandler).Methods(http.MethodPost)
	r.HandleFunc("/health/live", h.LiveHandler).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.ReadyHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// correlate reads or synthesizes the correlation id, echoes it on the
// response, and returns it for binding to the log context.
func correlate(w http.ResponseWriter, r *http.Request) string {
	id := admission.CorrelationID(r.Header.Get(admission.CorrelationIDHeader))
	w.Header().Set(admission.CorrelationIDHeader, id)
	return id
}

// SearchHandler implements POST /api/v1/search.
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	correlationID := correlate(w, r)
	logger := log.With(h.logger, "correlationId", correlationID)

	if !h.limiter.Allow() {
		writeError(w, correlationID, apierror.RateLimited("rate limit exceeded"))
		return
	}

	var body admission.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, correlationID, apierror.Validation("body", "malformed JSON body"))
		return
	}

	if err := admission.ValidateSearchRequest(&body); err != nil {
		writeError(w, correlationID, err)
		return
	}

	resp, err := h.orch.Search(r.Context(), orchestrator.Request{
		Query:    body.Query,
		TopK:     body.TopK,
		ShardKey: body.ShardKey,
		Nprobe:   body.Nprobe,
	})
	if err != nil {
		level.Warn(logger).Log("msg", "search failed", "err", err)
		writeError(w, correlationID, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// IndexInfoHandler implements GET /api/v1/index/info?shardKey=...
func (h *Handler) IndexInfoHandler(w http.ResponseWriter, r *http.Request) {
	correlationID := correlate(w, r)
	shardKey := r.URL.Query().Get("shardKey")

	shards, err := h.index.GetIndexInfo(r.Context(), shardKey)
	if err != nil {
		writeError(w, correlationID, apierror.BackendUnavailable("index", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shards": shards})
}

// IndexReloadHandler implements POST /api/v1/index/reload?shardKey=...
func (h *Handler) IndexReloadHandler(w http.ResponseWriter, r *http.Request) {
	correlationID := correlate(w, r)
	shardKey := r.URL.Query().Get("shardKey")

	if shardKey == "" {
		result, err := h.index.ReloadAll(r.Context())
		if err != nil {
			writeError(w, correlationID, apierror.BackendUnavailable("index", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        result.Success,
			"reloadedShards": result.ReloadedShards,
			"message":        result.Message,
		})
		return
	}

	result, err := h.index.ReloadIndex(r.Context(), shardKey)
	if err != nil {
		writeError(w, correlationID, apierror.BackendUnavailable("index", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        result.Success,
		"reloadedShards": result.ReloadedShards,
		"message":        result.Message,
	})
}

// LiveHandler implements GET /health/live.
func (h *Handler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	status := health.Live()
	writeJSON(w, http.StatusOK, map[string]any{"healthy": status.Healthy})
}

// ReadyHandler implements GET /health/ready.
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Ready(r.Context())
	if !status.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"healthy": false, "reason": status.Reason})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"healthy": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
