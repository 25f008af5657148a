// Package analytics turns raw GA4 report rows into the dashboard summary and
// derives trends, narrative insights and export documents from it.
//
// The package is organized into focused modules:
//   - analytics.go: Summary model definitions
//   - comparison.go: Period-over-period percentage change and trends
//   - aggregation.go: Row parsing and summary aggregation
//   - insights.go: Rule-based narrative insights
//   - export.go: CSV, JSON and YAML export documents
package analytics

// RawReportRow is one upstream report row: ordered dimension values followed
// by ordered metric values, both as the strings the source returned.
type RawReportRow struct {
	DimensionValues []string `json:"dimensionValues"`
	MetricValues    []string `json:"metricValues"`
}

// ChartDataPoint is a single day of the users series
type ChartDataPoint struct {
	Date  string `json:"date" yaml:"date"`
	Users int64  `json:"users" yaml:"users"`
	// Label is the display form of Date ("Jan 15"), or Date itself when malformed.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// TopPage represents a page ranked by views
type TopPage struct {
	Title string `json:"title" yaml:"title"`
	Path  string `json:"path" yaml:"path"`
	Views int64  `json:"views" yaml:"views"`
}

// TrafficSource represents a session source ranked by users
type TrafficSource struct {
	Name  string `json:"name" yaml:"name"`
	Users int64  `json:"users" yaml:"users"`
}

// Trend is the magnitude and direction of change between two totals.
// Value is always non-negative with one decimal place.
type Trend struct {
	Value string `json:"value" yaml:"value"`
	IsUp  bool   `json:"isUp" yaml:"isUp"`
}

// Summary is the aggregated dashboard payload for one property and period
type Summary struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalSessions  int64 `json:"totalSessions"`
	TotalPageViews int64 `json:"totalPageViews"`

	ChartData []ChartDataPoint `json:"chartData"`
	TopPages  []TopPage        `json:"topPages"`
	Sources   []TrafficSource  `json:"sources"`

	PreviousUsers     *int64 `json:"previousUsers,omitempty"`
	PreviousSessions  *int64 `json:"previousSessions,omitempty"`
	PreviousPageViews *int64 `json:"previousPageViews,omitempty"`

	UsersTrend     *Trend `json:"usersTrend,omitempty"`
	SessionsTrend  *Trend `json:"sessionsTrend,omitempty"`
	PageViewsTrend *Trend `json:"pageViewsTrend,omitempty"`
}

// MaxListItems caps the top pages and sources lists.
const MaxListItems = 10
