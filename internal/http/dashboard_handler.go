package http

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"ga4dash/internal/analytics"
	"ga4dash/internal/apperrors"
	"ga4dash/internal/dashboard"
	"ga4dash/internal/http/middleware"
)

// summaryRequest copies the query values: they end up in cached results that
// outlive the request buffer.
func summaryRequest(c *fiber.Ctx) dashboard.SummaryRequest {
	return dashboard.SummaryRequest{
		PropertyID: utils.CopyString(c.Query("propertyId")),
		StartDate:  utils.CopyString(c.Query("startDate")),
		EndDate:    utils.CopyString(c.Query("endDate")),
		Preset:     utils.CopyString(c.Query("range")),
	}
}

// AnalyticsSummaryAction returns the dashboard summary for a property
func (h *Handlers) AnalyticsSummaryAction(c *fiber.Ctx) error {
	req := summaryRequest(c)

	result, err := h.Service.Summary(c.UserContext(), middleware.AccessToken(c), req)
	if err != nil {
		return apperrors.WithFallback(err, apperrors.MsgSummaryFailed)
	}

	h.Logger.Debug("Summary served",
		slog.String("propertyId", req.PropertyID),
		slog.String("startDate", result.Period.Current.StartDate),
		slog.String("endDate", result.Period.Current.EndDate))

	c.Set(fiber.HeaderCacheControl, SummaryCacheControl)
	return c.JSON(result.Summary)
}

// PropertiesAction lists the GA4 properties the signed-in user can read
func (h *Handlers) PropertiesAction(c *fiber.Ctx) error {
	properties, err := h.Service.Properties(c.UserContext(), middleware.AccessToken(c))
	if err != nil {
		return apperrors.WithFallback(err, apperrors.MsgPropertiesFailed)
	}

	c.Set(fiber.HeaderCacheControl, PropertiesCacheControl)
	return c.JSON(properties)
}

// InsightsAction returns the insight sentences and headline for a summary
func (h *Handlers) InsightsAction(c *fiber.Ctx) error {
	report, err := h.Service.Insights(c.UserContext(), middleware.AccessToken(c), summaryRequest(c))
	if err != nil {
		return apperrors.WithFallback(err, apperrors.MsgInsightsFailed)
	}

	c.Set(fiber.HeaderCacheControl, SummaryCacheControl)
	return c.JSON(report)
}

// ExportAction downloads the summary as CSV, JSON or YAML
func (h *Handlers) ExportAction(c *fiber.Ctx) error {
	format, err := analytics.ParseExportFormat(c.Query("format"))
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Unsupported export format: %s", c.Query("format")), "format")
	}

	result, err := h.Service.Summary(c.UserContext(), middleware.AccessToken(c), summaryRequest(c))
	if err != nil {
		return apperrors.WithFallback(err, apperrors.MsgExportFailed)
	}

	now := h.now()
	label := result.Period.Current.Label

	var buf bytes.Buffer
	if err := analytics.Export(&buf, format, result.Summary, label, now); err != nil {
		return apperrors.WithFallback(err, apperrors.MsgExportFailed)
	}

	filename := analytics.ExportFilename(label, format, now)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set(fiber.HeaderCacheControl, "private, no-cache")
	return c.Send(buf.Bytes())
}
