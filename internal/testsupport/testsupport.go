package testsupport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ga4dash/internal/analytics"
	"ga4dash/internal/ga4"
)

// TestToken is the access token used by handler tests.
const TestToken = "test-access-token"

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ReadBody drains and closes a response body.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// ReportCall records one RunReport invocation
type ReportCall struct {
	Token      string
	PropertyID string
	Query      ga4.Query
}

// FakeSource is an in-memory ga4.Source. Rows are looked up by report name
// and start date, falling back to the report name alone.
type FakeSource struct {
	mu sync.Mutex

	Rows       map[string][]analytics.RawReportRow
	Errors     map[string]error
	Properties []ga4.Property
	ListErr    error

	calls     []ReportCall
	listCalls int
}

var _ ga4.Source = (*FakeSource)(nil)

func NewFakeSource() *FakeSource {
	return &FakeSource{
		Rows:   map[string][]analytics.RawReportRow{},
		Errors: map[string]error{},
	}
}

// ReportKey is the lookup key for a report over a range starting at startDate.
func ReportKey(report ga4.Report, startDate string) string {
	return report.Name + "@" + startDate
}

func (f *FakeSource) SetRows(report ga4.Report, startDate string, rows []analytics.RawReportRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rows[ReportKey(report, startDate)] = rows
}

// SetDefaultRows serves rows for the report regardless of date range.
func (f *FakeSource) SetDefaultRows(report ga4.Report, rows []analytics.RawReportRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rows[report.Name] = rows
}

func (f *FakeSource) FailReport(report ga4.Report, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[report.Name] = err
}

func (f *FakeSource) RunReport(ctx context.Context, token, propertyID string, q ga4.Query) ([]analytics.RawReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, ReportCall{Token: token, PropertyID: propertyID, Query: q})

	if err := f.Errors[q.Report.Name]; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rows, ok := f.Rows[ReportKey(q.Report, q.DateRange.StartDate)]; ok {
		return rows, nil
	}
	return f.Rows[q.Report.Name], nil
}

func (f *FakeSource) ListProperties(_ context.Context, _ string) ([]ga4.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Properties, nil
}

// Calls returns a copy of the recorded report calls.
func (f *FakeSource) Calls() []ReportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReportCall(nil), f.calls...)
}

func (f *FakeSource) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// Row builds a raw report row.
func Row(dimensions []string, metrics ...string) analytics.RawReportRow {
	return analytics.RawReportRow{DimensionValues: dimensions, MetricValues: metrics}
}

// SeedStandardReports loads a two-day traffic report, three top pages and two
// sources into the fake source for every date range.
func SeedStandardReports(t *testing.T, source *FakeSource) {
	t.Helper()
	require.NotNil(t, source)

	source.SetDefaultRows(ga4.TrafficReport, []analytics.RawReportRow{
		Row([]string{"20240101"}, "100", "50", "200"),
		Row([]string{"20240102"}, "110", "55", "210"),
	})
	source.SetDefaultRows(ga4.TopPagesReport, []analytics.RawReportRow{
		Row([]string{"Home", "/"}, "250"),
		Row([]string{"Pricing", "/pricing"}, "90"),
		Row([]string{"Blog", "/blog"}, "40"),
	})
	source.SetDefaultRows(ga4.SourcesReport, []analytics.RawReportRow{
		Row([]string{"google"}, "150"),
		Row([]string{"(direct)"}, "60"),
	})
}
