// Package ga4 fetches report rows and property listings from the Google
// Analytics Data and Admin APIs on behalf of a signed-in user.
package ga4

import (
	"ga4dash/internal/timeframe"
)

// Report describes the dimensions and metrics of one upstream report.
type Report struct {
	// Name labels the report in error messages ("GA Data API (Traffic) Error").
	Name        string
	Dimensions  []string
	Metrics     []string
	OrderByDate bool
	Limit       int64
}

var (
	// TrafficReport returns one row per day: users, sessions, page views.
	TrafficReport = Report{
		Name:        "Traffic",
		Dimensions:  []string{"date"},
		Metrics:     []string{"activeUsers", "sessions", "screenPageViews"},
		OrderByDate: true,
	}

	// TopPagesReport returns the most viewed pages with title and path.
	TopPagesReport = Report{
		Name:       "Pages",
		Dimensions: []string{"pageTitle", "pagePath"},
		Metrics:    []string{"screenPageViews"},
		Limit:      10,
	}

	// SourcesReport returns users per session source.
	SourcesReport = Report{
		Name:       "Sources",
		Dimensions: []string{"sessionSource"},
		Metrics:    []string{"activeUsers"},
		Limit:      10,
	}
)

// Query is a report over a date range
type Query struct {
	Report    Report
	DateRange timeframe.DateRange
}

func NewQuery(report Report, dateRange timeframe.DateRange) Query {
	return Query{Report: report, DateRange: dateRange}
}

// Operation is the label used for failures of this report.
func (r Report) Operation() string {
	return "GA Data API (" + r.Name + ")"
}

// Property is a GA4 property the user can read
type Property struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
