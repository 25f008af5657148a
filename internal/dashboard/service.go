// Package dashboard assembles the analytics summary for a property: it
// resolves the requested period, fans out the upstream report fetches,
// aggregates the rows and caches the outcome.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ga4dash/internal/analytics"
	"ga4dash/internal/apperrors"
	"ga4dash/internal/cache"
	"ga4dash/internal/ga4"
	"ga4dash/internal/pkg/async"
	"ga4dash/internal/timeframe"
)

// Task names of the summary fan-out
const (
	taskTraffic         = "traffic"
	taskTopPages        = "topPages"
	taskSources         = "sources"
	taskPreviousTraffic = "previousTraffic"
)

const (
	summaryKeyPrefix    = "summary"
	propertiesKeyPrefix = "properties"
)

// SummaryRequest carries the dashboard query parameters
type SummaryRequest struct {
	PropertyID string
	StartDate  string
	EndDate    string
	Preset     string
}

// Result is a summary together with the period it covers
type Result struct {
	Summary *analytics.Summary `json:"summary"`
	Period  timeframe.Period   `json:"period"`
}

// Service builds dashboard payloads from the upstream source
type Service struct {
	source     ga4.Source
	summaries  cache.Store[Result]
	properties cache.Store[[]ga4.Property]
	parser     *timeframe.Parser
	pool       *async.Pool
	logger     *slog.Logger
	summaryTTL time.Duration
	listTTL    time.Duration
}

// Option configures a Service
type Option func(*Service)

func WithSummaryCache(store cache.Store[Result]) Option {
	return func(s *Service) {
		s.summaries = store
	}
}

func WithPropertiesCache(store cache.Store[[]ga4.Property]) Option {
	return func(s *Service) {
		s.properties = store
	}
}

func WithParser(parser *timeframe.Parser) Option {
	return func(s *Service) {
		s.parser = parser
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTTLs overrides the summary and property list cache lifetimes.
func WithTTLs(summary, properties time.Duration) Option {
	return func(s *Service) {
		if summary > 0 {
			s.summaryTTL = summary
		}
		if properties > 0 {
			s.listTTL = properties
		}
	}
}

func NewService(source ga4.Source, opts ...Option) *Service {
	s := &Service{
		source:     source,
		parser:     timeframe.NewParser(time.UTC),
		pool:       async.NewPool(4),
		logger:     slog.Default(),
		summaryTTL: cache.TTLShort,
		listTTL:    cache.TTLLong,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.summaries == nil {
		s.summaries = cache.NewMemory[Result]()
	}
	if s.properties == nil {
		s.properties = cache.NewMemory[[]ga4.Property]()
	}
	return s
}

// Summary returns the aggregated summary for the requested property and period.
// Any failed fetch fails the whole request; no partial summary is returned.
func (s *Service) Summary(ctx context.Context, token string, req SummaryRequest) (*Result, error) {
	if strings.TrimSpace(req.PropertyID) == "" {
		return nil, apperrors.NewValidationError(apperrors.MsgPropertyMissing, "propertyId")
	}

	period, err := s.parser.Parse(timeframe.ParserParams{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Preset:    req.Preset,
	})
	if err != nil {
		return nil, periodError(err)
	}

	key := cache.GenerateKey(summaryKeyPrefix, map[string]any{
		"propertyId": req.PropertyID,
		"startDate":  period.ResolvedStart(),
		"endDate":    period.ResolvedEnd(),
		"label":      period.Current.Label,
		"user":       cache.Fingerprint(token),
	})

	if cached, ok := s.cacheGet(ctx, key); ok {
		s.logger.Debug("Summary served from cache", slog.String("property", req.PropertyID))
		return &cached, nil
	}

	summary, err := s.fetchSummary(ctx, token, req.PropertyID, period)
	if err != nil {
		return nil, err
	}

	result := Result{Summary: summary, Period: period}
	if err := s.summaries.Set(ctx, key, result, s.summaryTTL); err != nil {
		s.logger.Warn("Failed to cache summary", slog.String("key", key), slog.Any("error", err))
	}
	return &result, nil
}

// Insights returns the narrative view of the requested summary.
func (s *Service) Insights(ctx context.Context, token string, req SummaryRequest) (*analytics.InsightReport, error) {
	result, err := s.Summary(ctx, token, req)
	if err != nil {
		return nil, err
	}
	report := analytics.BuildInsightReport(result.Summary)
	return &report, nil
}

// Properties lists the properties the user can read.
func (s *Service) Properties(ctx context.Context, token string) ([]ga4.Property, error) {
	key := cache.GenerateKey(propertiesKeyPrefix, map[string]any{"user": cache.Fingerprint(token)})

	cached, ok, err := s.properties.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Property cache read failed", slog.Any("error", err))
	} else if ok {
		return cached, nil
	}

	properties, err := s.source.ListProperties(ctx, token)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = []ga4.Property{}
	}

	if err := s.properties.Set(ctx, key, properties, s.listTTL); err != nil {
		s.logger.Warn("Failed to cache properties", slog.Any("error", err))
	}
	return properties, nil
}

func (s *Service) fetchSummary(ctx context.Context, token, propertyID string, period timeframe.Period) (*analytics.Summary, error) {
	fetch := func(report ga4.Report, dateRange timeframe.DateRange) func(ctx context.Context) (interface{}, error) {
		return func(ctx context.Context) (interface{}, error) {
			return s.source.RunReport(ctx, token, propertyID, ga4.NewQuery(report, dateRange))
		}
	}

	tasks := []async.Task{
		{Name: taskTraffic, Execute: fetch(ga4.TrafficReport, period.Current)},
		{Name: taskTopPages, Execute: fetch(ga4.TopPagesReport, period.Current)},
		{Name: taskSources, Execute: fetch(ga4.SourcesReport, period.Current)},
		{Name: taskPreviousTraffic, Execute: fetch(ga4.TrafficReport, period.Previous)},
	}

	started := time.Now()
	results, err := s.pool.ExecuteAll(ctx, tasks)
	if err != nil {
		s.logger.Error("Failed to fetch summary reports",
			slog.String("property", propertyID),
			slog.Any("error", err))
		return nil, err
	}

	summary := analytics.Aggregate(analytics.ReportSet{
		Traffic:         rowsOf(results, taskTraffic),
		TopPages:        rowsOf(results, taskTopPages),
		Sources:         rowsOf(results, taskSources),
		PreviousTraffic: rowsOf(results, taskPreviousTraffic),
	})

	s.logger.Info("Summary built",
		slog.String("property", propertyID),
		slog.String("range", period.Current.Label),
		slog.Int64("users", summary.TotalUsers),
		slog.Duration("elapsed", time.Since(started)))

	return summary, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) (Result, bool) {
	cached, ok, err := s.summaries.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Summary cache read failed", slog.String("key", key), slog.Any("error", err))
		return Result{}, false
	}
	return cached, ok && cached.Summary != nil
}

func rowsOf(results map[string]async.Result, name string) []analytics.RawReportRow {
	rows, _ := results[name].Data.([]analytics.RawReportRow)
	return rows
}

func periodError(err error) error {
	field := "dateRange"
	var paramErr *timeframe.ParamError
	if errors.As(err, &paramErr) {
		field = paramErr.Param
	}
	return apperrors.NewValidationError(fmt.Sprintf("Invalid date range: %v", err), field)
}
