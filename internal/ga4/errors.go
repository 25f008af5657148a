package ga4

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"ga4dash/internal/apperrors"
)

const adminOperation = "GA Admin API"

// MsgMalformedRow is the detail of rows that carry fewer cells than requested.
const MsgMalformedRow = "malformed report row"

// classify maps an upstream failure to the error taxonomy. 401 and 403 need a
// new sign-in, 429 asks the user to retry later, anything else carries the
// upstream payload.
func classify(operation string, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return apperrors.NewUpstreamError(operation, err.Error(), err)
	}

	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewAuthError(apperrors.MsgAccessDenied, err)
	case http.StatusTooManyRequests:
		return apperrors.NewRateLimitError(err)
	}

	detail := apiErr.Body
	if detail == "" {
		detail = apiErr.Message
	}
	return apperrors.NewUpstreamError(operation, detail, err)
}
