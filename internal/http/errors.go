package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"ga4dash/internal/apperrors"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// ErrorResponse is the envelope every failed API request returns
type ErrorResponse struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

// ErrorHandler renders any error returned by a handler or middleware as an
// ErrorResponse.
func ErrorHandler(logger *slog.Logger, now func() time.Time) fiber.ErrorHandler {
	if now == nil {
		now = time.Now
	}

	return func(c *fiber.Ctx, err error) error {
		resp := ErrorResponse{
			Message:    apperrors.MsgInternal,
			Code:       apperrors.CodeInternal,
			StatusCode: fiber.StatusInternalServerError,
			Timestamp:  now().UTC().Format(timestampLayout),
		}

		var fe *fiber.Error
		if app, ok := apperrors.AsAppError(err); ok {
			resp.Message = app.Message
			resp.Code = app.Code
			resp.StatusCode = apperrors.StatusCode(err)
		} else if errors.As(err, &fe) {
			resp.Message = fe.Message
			resp.Code = "HTTP_ERROR"
			resp.StatusCode = fe.Code
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", resp.StatusCode),
			slog.String("code", resp.Code),
			slog.Any("error", err),
		}
		if resp.StatusCode >= fiber.StatusInternalServerError {
			logger.Error("Request failed", attrs...)
		} else {
			logger.Warn("Request rejected", attrs...)
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(resp.StatusCode).JSON(resp)
	}
}
