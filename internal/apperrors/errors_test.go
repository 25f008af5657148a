package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{name: "auth", err: NewAuthError(MsgUnauthorized, nil), want: http.StatusUnauthorized, code: CodeAuth},
		{name: "rate limit", err: NewRateLimitError(nil), want: http.StatusTooManyRequests, code: CodeRateLimit},
		{name: "validation", err: NewValidationError(MsgPropertyMissing, "propertyId"), want: http.StatusBadRequest, code: CodeValidation},
		{name: "upstream", err: NewUpstreamError("GA Data API (Traffic)", `{"error":"boom"}`, nil), want: http.StatusInternalServerError, code: CodeUpstream},
		{name: "wrapped auth", err: fmt.Errorf("fetching traffic: %w", NewAuthError(MsgAccessDenied, nil)), want: http.StatusUnauthorized, code: CodeAuth},
		{name: "cache", err: NewCacheError("get failed", "get", "summary?a=1", errors.New("conn refused")), want: http.StatusInternalServerError, code: CodeCache},
		{name: "plain error", err: errors.New("socket closed"), want: http.StatusInternalServerError, code: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, MsgRateLimited, Message(NewRateLimitError(nil), MsgSummaryFailed))
	assert.Equal(t, MsgSummaryFailed, Message(errors.New("dial tcp: timeout"), MsgSummaryFailed))
}

func TestUpstreamErrorMessageCarriesDetail(t *testing.T) {
	err := NewUpstreamError("GA Data API (Pages)", `{"code":500}`, nil)

	assert.Equal(t, `GA Data API (Pages) Error: {"code":500}`, err.Error())
	assert.True(t, IsUpstream(err))
	assert.False(t, IsAuth(err))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("token expired")
	err := NewAuthError(MsgUnauthorized, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Unauthorized: token expired", err.Error())
}

func TestWithFallback(t *testing.T) {
	assert.NoError(t, WithFallback(nil, MsgSummaryFailed))

	rateLimited := NewRateLimitError(nil)
	assert.Same(t, error(rateLimited), WithFallback(rateLimited, MsgSummaryFailed))

	cause := errors.New("dial tcp: timeout")
	err := WithFallback(cause, MsgSummaryFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, Code(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, MsgSummaryFailed, Message(err, MsgInternal))
}
