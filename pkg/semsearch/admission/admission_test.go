package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vectorgw/semsearch/pkg/semsearch/apierror"
)

func TestValidateSearchRequestRejectsEmptyQuery(t *testing.T) {
	err := ValidateSearchRequest(&SearchRequest{Query: "", TopK: 5})
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	require.Equal(t, apierror.KindValidation, apiErr.Kind)
}

func TestValidateSearchRequestRejectsOversizedTopK(t *testing.T) {
	err := ValidateSearchRequest(&SearchRequest{Query: "x", TopK: 101})
	require.Error(t, err)
}

func TestValidateSearchRequestAcceptsMinimalRequest(t *testing.T) {
	err := ValidateSearchRequest(&SearchRequest{Query: "taxi ride from JFK"})
	require.NoError(t, err)
}

func TestRateLimiterAdmitsUpToCombinedBudget(t *testing.T) {
	cfg := RateLimitConfig{PermitLimit: 3, Window: time.Minute, QueueLimit: 2}
	rl := NewRateLimiter(cfg)

	for i := 0; i < 5; i++ {
		require.True(t, rl.Allow(), "request %d should be admitted", i)
	}
	require.False(t, rl.Allow(), "the (N+1)th request must be rejected")
}

func TestRateLimiterResetsAfterWindowElapses(t *testing.T) {
	cfg := RateLimitConfig{PermitLimit: 1, Window: 20 * time.Millisecond, QueueLimit: 0}
	rl := NewRateLimiter(cfg)

	require.True(t, rl.Allow())
	require.False(t, rl.Allow())

	time.Sleep(30 * time.Millisecond)
	require.True(t, rl.Allow(), "a new window should admit again")
}

func TestCorrelationIDEchoesIncoming(t *testing.T) {
	require.Equal(t, "abc-123", CorrelationID("abc-123"))
}

func TestCorrelationIDSynthesizesSixteenHexCharsWhenAbsent(t *testing.T) {
	id := CorrelationID("")
	require.Len(t, id, 16)
	for _, c := range id {
		require.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
	}
}
