package analytics

import (
	"strconv"
	"strings"

	"ga4dash/internal/timeframe"
)

// Traffic metric positions, matching the traffic query's metric order.
const (
	trafficUsers = iota
	trafficSessions
	trafficPageViews
)

const (
	defaultPageTitle  = "Untitled"
	defaultPagePath   = "/"
	defaultSourceName = "Unknown"
)

// ReportSet holds the four report row sets one summary is built from.
type ReportSet struct {
	Traffic         []RawReportRow
	TopPages        []RawReportRow
	Sources         []RawReportRow
	PreviousTraffic []RawReportRow
}

// Totals are the summed traffic metrics of one period
type Totals struct {
	Users     int64
	Sessions  int64
	PageViews int64
}

// Aggregate builds the complete summary, including trends against the
// previous period.
func Aggregate(set ReportSet) *Summary {
	current := SumTraffic(set.Traffic)
	previous := SumTraffic(set.PreviousTraffic)

	usersTrend := BuildTrend(current.Users, previous.Users)
	sessionsTrend := BuildTrend(current.Sessions, previous.Sessions)
	pageViewsTrend := BuildTrend(current.PageViews, previous.PageViews)

	return &Summary{
		TotalUsers:        current.Users,
		TotalSessions:     current.Sessions,
		TotalPageViews:    current.PageViews,
		ChartData:         BuildChartData(set.Traffic),
		TopPages:          BuildTopPages(set.TopPages),
		Sources:           BuildSources(set.Sources),
		PreviousUsers:     &previous.Users,
		PreviousSessions:  &previous.Sessions,
		PreviousPageViews: &previous.PageViews,
		UsersTrend:        &usersTrend,
		SessionsTrend:     &sessionsTrend,
		PageViewsTrend:    &pageViewsTrend,
	}
}

// SumTraffic sums users, sessions and page views across traffic rows.
func SumTraffic(rows []RawReportRow) Totals {
	var totals Totals
	for _, row := range rows {
		totals.Users += ParseMetric(cell(row.MetricValues, trafficUsers))
		totals.Sessions += ParseMetric(cell(row.MetricValues, trafficSessions))
		totals.PageViews += ParseMetric(cell(row.MetricValues, trafficPageViews))
	}
	return totals
}

// BuildChartData maps traffic rows to the users series, keeping upstream order.
func BuildChartData(rows []RawReportRow) []ChartDataPoint {
	points := make([]ChartDataPoint, 0, len(rows))
	for _, row := range rows {
		date := cell(row.DimensionValues, 0)
		points = append(points, ChartDataPoint{
			Date:  date,
			Users: ParseMetric(cell(row.MetricValues, trafficUsers)),
			Label: timeframe.DisplayDate(date),
		})
	}
	return points
}

func BuildTopPages(rows []RawReportRow) []TopPage {
	rows = capRows(rows)
	pages := make([]TopPage, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, TopPage{
			Title: orDefault(cell(row.DimensionValues, 0), defaultPageTitle),
			Path:  orDefault(cell(row.DimensionValues, 1), defaultPagePath),
			Views: ParseMetric(cell(row.MetricValues, 0)),
		})
	}
	return pages
}

func BuildSources(rows []RawReportRow) []TrafficSource {
	rows = capRows(rows)
	sources := make([]TrafficSource, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, TrafficSource{
			Name:  orDefault(cell(row.DimensionValues, 0), defaultSourceName),
			Users: ParseMetric(cell(row.MetricValues, 0)),
		})
	}
	return sources
}

// ParseMetric reads the leading base-10 integer of a metric value. Fractional
// parts are dropped and values with no leading digits count as 0.
func ParseMetric(value string) int64 {
	s := strings.TrimLeft(value, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func cell(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func capRows(rows []RawReportRow) []RawReportRow {
	if len(rows) > MaxListItems {
		return rows[:MaxListItems]
	}
	return rows
}
