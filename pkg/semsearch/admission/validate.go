// Package admission shapes load before the orchestrator sees it:
// struct-tag validation of the incoming request, a fixed-window rate
// limiter, and correlation-id handling.
package admission

import (
	"github.com/go-playground/validator/v10"

	"github.com/vectorgw/semsearch/pkg/semsearch/apierror"
)

// SearchRequest is the wire shape validated before admission to the
// orchestrator.
type SearchRequest struct {
	Query    string `json:"query" validate:"required,min=1,max=2000"`
	TopK     int32  `json:"topK" validate:"omitempty,min=1,max=100"`
	ShardKey string `json:"shardKey" validate:"omitempty"`
	Nprobe   int32  `json:"nprobe" validate:"omitempty,min=1,max=256"`
}

var validate = validator.New()

// ValidateSearchRequest enforces SearchRequest's field constraints,
// returning the first violation as a KindValidation *apierror.Error.
func ValidateSearchRequest(req *SearchRequest) error {
	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apierror.Validation(fe.Field(), describeViolation(fe))
		}
		return apierror.Validation("request", err.Error())
	}
	return nil
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
