// Package apperrors defines the error taxonomy shared by the dashboard service
// and its HTTP surface. Every error carries the HTTP status it surfaces as.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeAuth       = "AUTH_ERROR"
	CodeRateLimit  = "RATE_LIMIT_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeUpstream   = "UPSTREAM_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// User-facing messages
const (
	MsgUnauthorized     = "Unauthorized"
	MsgAccessDenied     = "Access denied. Please re-authenticate with Google Analytics."
	MsgRateLimited      = "Rate limit exceeded. Please try again in a few minutes."
	MsgPropertyMissing  = "Property ID is required"
	MsgSummaryFailed    = "Failed to load analytics data"
	MsgPropertiesFailed = "Failed to fetch analytics properties"
	MsgInsightsFailed   = "Failed to generate insights"
	MsgExportFailed     = "Failed to export analytics data"
	MsgInternal         = "Internal Server Error"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	// Detail holds the upstream payload or any extra context worth logging.
	Detail string
	Cause  error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code the error surfaces as.
func (e *AppError) HTTPStatus() int {
	return e.StatusCode
}

func (e *AppError) base() *AppError {
	return e
}

// AuthError signals a missing, invalid or expired credential.
type AuthError struct {
	*AppError
}

func NewAuthError(message string, cause error) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAuth,
			StatusCode: http.StatusUnauthorized,
			Cause:      cause,
		},
	}
}

// RateLimitError signals that the upstream source throttled the request.
type RateLimitError struct {
	*AppError
}

func NewRateLimitError(cause error) *RateLimitError {
	return &RateLimitError{
		AppError: &AppError{
			Message:    MsgRateLimited,
			Code:       CodeRateLimit,
			StatusCode: http.StatusTooManyRequests,
			Cause:      cause,
		},
	}
}

// ValidationError signals a missing or malformed request parameter.
type ValidationError struct {
	*AppError
	Field string
}

func NewValidationError(message, field string) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
		},
		Field: field,
	}
}

// UpstreamError wraps any other non-success upstream response.
type UpstreamError struct {
	*AppError
	Operation string
}

func NewUpstreamError(operation, detail string, cause error) *UpstreamError {
	return &UpstreamError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s Error: %s", operation, detail),
			Code:       CodeUpstream,
			StatusCode: http.StatusInternalServerError,
			Detail:     detail,
			Cause:      cause,
		},
		Operation: operation,
	}
}

// CacheError wraps a failing cache backend operation.
type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Cause:      cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// WithFallback returns err unchanged when it is already classified, otherwise
// an internal AppError with the given user-facing message.
func WithFallback(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return &AppError{
		Message:    message,
		Code:       CodeInternal,
		StatusCode: http.StatusInternalServerError,
		Cause:      err,
	}
}

type statusCoder interface {
	HTTPStatus() int
}

// classified is satisfied by AppError and every wrapper embedding it.
type classified interface {
	base() *AppError
}

// AsAppError returns the AppError carried by err, if any.
func AsAppError(err error) (*AppError, bool) {
	var c classified
	if errors.As(err, &c) {
		return c.base(), true
	}
	return nil, false
}

// StatusCode maps err to the HTTP status it should surface as. Unclassified
// errors are 500.
func StatusCode(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) && sc.HTTPStatus() > 0 {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Code returns the error code of a classified error, or "" otherwise.
func Code(err error) string {
	if app, ok := AsAppError(err); ok {
		return app.Code
	}
	return ""
}

// Message returns the user-facing message of a classified error, falling back
// to the provided default for anything else.
func Message(err error, fallback string) string {
	if app, ok := AsAppError(err); ok && app.Message != "" {
		return app.Message
	}
	return fallback
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

func IsCache(err error) bool {
	var target *CacheError
	return errors.As(err, &target)
}
