package ga4

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/analyticsadmin/v1beta"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"ga4dash/internal/analytics"
	"ga4dash/internal/apperrors"
)

const propertyPrefix = "properties/"

// Source is the upstream reporting collaborator
type Source interface {
	RunReport(ctx context.Context, token, propertyID string, q Query) ([]analytics.RawReportRow, error)
	ListProperties(ctx context.Context, token string) ([]Property, error)
}

// Client talks to the Google Analytics Data and Admin APIs using the caller's
// OAuth access token.
type Client struct {
	httpClient    *http.Client
	dataEndpoint  string
	adminEndpoint string
	logger        *slog.Logger
}

var _ Source = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport wrapped by the per-request token source.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDataEndpoint overrides the Data API base URL.
func WithDataEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.dataEndpoint = normalizeEndpoint(endpoint)
	}
}

// WithAdminEndpoint overrides the Admin API base URL.
func WithAdminEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.adminEndpoint = normalizeEndpoint(endpoint)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunReport runs one report for the property and returns its rows. Absent rows
// are an empty result. Rows with fewer cells than requested are rejected.
func (c *Client) RunReport(ctx context.Context, token, propertyID string, q Query) ([]analytics.RawReportRow, error) {
	operation := q.Report.Operation()

	svc, err := analyticsdata.NewService(ctx, c.serviceOptions(ctx, token, c.dataEndpoint)...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(operation, "client setup failed", err)
	}

	started := time.Now()
	resp, err := svc.Properties.RunReport(propertyPrefix+propertyID, buildReportRequest(q)).Context(ctx).Do()
	if err != nil {
		c.logger.Warn("GA4 report failed",
			slog.String("report", q.Report.Name),
			slog.String("property", propertyID),
			slog.Any("error", err))
		return nil, classify(operation, err)
	}

	rows, err := convertRows(q.Report, resp.Rows)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("GA4 report fetched",
		slog.String("report", q.Report.Name),
		slog.String("property", propertyID),
		slog.String("start", q.DateRange.StartDate),
		slog.String("end", q.DateRange.EndDate),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(started)))

	return rows, nil
}

// ListProperties flattens the property summaries of every account the user
// can access.
func (c *Client) ListProperties(ctx context.Context, token string) ([]Property, error) {
	svc, err := analyticsadmin.NewService(ctx, c.serviceOptions(ctx, token, c.adminEndpoint)...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(adminOperation, "client setup failed", err)
	}

	properties := []Property{}
	err = svc.AccountSummaries.List().Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1betaListAccountSummariesResponse) error {
		for _, account := range page.AccountSummaries {
			if account == nil {
				continue
			}
			for _, summary := range account.PropertySummaries {
				if summary == nil {
					continue
				}
				properties = append(properties, Property{
					ID:          strings.TrimPrefix(summary.Property, propertyPrefix),
					DisplayName: summary.DisplayName,
				})
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("GA4 property listing failed", slog.Any("error", err))
		return nil, classify(adminOperation, err)
	}

	return properties, nil
}

func (c *Client) serviceOptions(ctx context.Context, token, endpoint string) []option.ClientOption {
	base := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	authed := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}

func buildReportRequest(q Query) *analyticsdata.RunReportRequest {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: q.DateRange.StartDate,
			EndDate:   q.DateRange.EndDate,
		}},
		Limit: q.Report.Limit,
	}
	for _, name := range q.Report.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: name})
	}
	for _, name := range q.Report.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: name})
	}
	if q.Report.OrderByDate {
		req.OrderBys = []*analyticsdata.OrderBy{{
			Dimension: &analyticsdata.DimensionOrderBy{DimensionName: "date"},
			Desc:      false,
		}}
	}
	return req
}

func convertRows(report Report, rows []*analyticsdata.Row) ([]analytics.RawReportRow, error) {
	out := make([]analytics.RawReportRow, 0, len(rows))
	for i, row := range rows {
		if row == nil || len(row.DimensionValues) < len(report.Dimensions) || len(row.MetricValues) < len(report.Metrics) {
			return nil, apperrors.NewUpstreamError(report.Operation(), MsgMalformedRow, fmt.Errorf("row %d", i))
		}

		raw := analytics.RawReportRow{
			DimensionValues: make([]string, len(row.DimensionValues)),
			MetricValues:    make([]string, len(row.MetricValues)),
		}
		for j, v := range row.DimensionValues {
			if v != nil {
				raw.DimensionValues[j] = v.Value
			}
		}
		for j, v := range row.MetricValues {
			if v != nil {
				raw.MetricValues[j] = v.Value
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

func normalizeEndpoint(endpoint string) string {
	if endpoint == "" || strings.HasSuffix(endpoint, "/") {
		return endpoint
	}
	return endpoint + "/"
}
