package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"ga4dash/internal/timeframe"
)

// ExportFormat identifies an export document encoding
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// exportDateLayout matches ISO-8601 timestamps with millisecond precision in UTC.
const exportDateLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrUnknownExportFormat = errors.New("unknown export format")

	whitespaceRun = regexp.MustCompile(`\s+`)
	lowerCaser    = cases.Lower(language.Und)
)

// ParseExportFormat accepts csv, json or yaml (case-insensitive). An empty
// value selects CSV.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportJSON:
		return ExportJSON, nil
	case ExportYAML, "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExportFormat, value)
	}
}

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json; charset=utf-8"
	case ExportYAML:
		return "application/yaml; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f ExportFormat) Extension() string {
	return string(f)
}

// ExportMetrics holds the headline totals of an export document
type ExportMetrics struct {
	TotalUsers     int64 `json:"totalUsers" yaml:"totalUsers"`
	TotalSessions  int64 `json:"totalSessions" yaml:"totalSessions"`
	TotalPageViews int64 `json:"totalPageViews" yaml:"totalPageViews"`
}

// ExportDocument is the structured export shared by the JSON and YAML formats
type ExportDocument struct {
	ExportDate     string          `json:"exportDate" yaml:"exportDate"`
	DateRange      string          `json:"dateRange" yaml:"dateRange"`
	Metrics        ExportMetrics   `json:"metrics" yaml:"metrics"`
	TopPages       []TopPage       `json:"topPages" yaml:"topPages"`
	TrafficSources []TrafficSource `json:"trafficSources" yaml:"trafficSources"`
}

// NewExportDocument snapshots a summary for export under the given range label.
func NewExportDocument(s *Summary, label string, now time.Time) ExportDocument {
	return ExportDocument{
		ExportDate: now.UTC().Format(exportDateLayout),
		DateRange:  label,
		Metrics: ExportMetrics{
			TotalUsers:     s.TotalUsers,
			TotalSessions:  s.TotalSessions,
			TotalPageViews: s.TotalPageViews,
		},
		TopPages:       ensureNonNil(s.TopPages),
		TrafficSources: ensureNonNil(s.Sources),
	}
}

// Export writes the summary to w in the requested format.
func Export(w io.Writer, format ExportFormat, s *Summary, label string, now time.Time) error {
	switch format {
	case ExportCSV:
		return WriteCSV(w, s)
	case ExportJSON:
		return WriteJSON(w, NewExportDocument(s, label, now))
	case ExportYAML:
		return WriteYAML(w, NewExportDocument(s, label, now))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownExportFormat, format)
	}
}

// WriteCSV writes the sectioned CSV layout: metrics, top pages, then traffic
// sources, separated by blank lines. Text fields are always quoted.
func WriteCSV(w io.Writer, s *Summary) error {
	rows := []string{
		"Metric,Value",
		"Active Users," + strconv.FormatInt(s.TotalUsers, 10),
		"Total Sessions," + strconv.FormatInt(s.TotalSessions, 10),
		"Total Page Views," + strconv.FormatInt(s.TotalPageViews, 10),
		"",
		"Top Pages",
		"Page Title,Page Path,Views",
	}
	for _, page := range s.TopPages {
		rows = append(rows, quoteCSV(page.Title)+","+quoteCSV(page.Path)+","+strconv.FormatInt(page.Views, 10))
	}

	rows = append(rows, "", "Traffic Sources", "Source,Users")
	for _, source := range s.Sources {
		rows = append(rows, quoteCSV(source.Name)+","+strconv.FormatInt(source.Users, 10))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

// WriteJSON writes the document with two-space indentation.
func WriteJSON(w io.Writer, doc ExportDocument) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}

func WriteYAML(w io.Writer, doc ExportDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}

// ExportFilename builds "analytics-<label>-<date>.<ext>" where the label is
// lowercased with whitespace runs collapsed to hyphens.
func ExportFilename(label string, format ExportFormat, now time.Time) string {
	slug := whitespaceRun.ReplaceAllString(lowerCaser.String(label), "-")
	return fmt.Sprintf("analytics-%s-%s.%s", slug, now.UTC().Format(timeframe.DateLayout), format.Extension())
}

func quoteCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// ensureNonNil keeps empty lists encoded as [] rather than null.
func ensureNonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
