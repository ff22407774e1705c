package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vectorgw/semsearch/pkg/semsearch/apierror"
)

// problemDetail is an RFC 7807 problem body; every error response
// carries the correlation id for consistency.
type problemDetail struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	Detail        string `json:"detail,omitempty"`
	Field         string `json:"field,omitempty"`
	CorrelationID string `json:"correlationId"`
}

// writeError maps err to a status code and writes an RFC 7807 body. An
// *apierror.Error carries its own kind; anything else is treated as
// internal-error.
func writeError(w http.ResponseWriter, correlationID string, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		writeProblem(w, correlationID, http.StatusServiceUnavailable, "internal-error", "Internal Error", err.Error(), "")
		return
	}

	switch apiErr.Kind {
	case apierror.KindValidation:
		writeProblem(w, correlationID, http.StatusBadRequest, "validation-error", "Validation Error", apiErr.Error(), apiErr.Field)
	case apierror.KindRateLimited:
		writeProblem(w, correlationID, http.StatusTooManyRequests, "rate-limited", "Rate Limited", apiErr.Error(), "")
	case apierror.KindBackendUnavailable:
		writeProblem(w, correlationID, http.StatusServiceUnavailable, "backend-unavailable", "Backend Unavailable", apiErr.Error(), "")
	default:
		writeProblem(w, correlationID, http.StatusServiceUnavailable, "internal-error", "Internal Error", apiErr.Error(), "")
	}
}

func writeProblem(w http.ResponseWriter, correlationID string, status int, typ, title, detail, field string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problemDetail{
		Type:          typ,
		Title:         title,
		Status:        status,
		Detail:        detail,
		Field:         field,
		CorrelationID: correlationID,
	})
}
