package analytics_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ga4dash/internal/analytics"
)

var exportTime = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func exportSummary() *analytics.Summary {
	return &analytics.Summary{
		TotalUsers:     210,
		TotalSessions:  105,
		TotalPageViews: 410,
		TopPages: []analytics.TopPage{
			{Title: "Home", Path: "/", Views: 300},
			{Title: `Say "hi"`, Path: "/a,b", Views: 110},
		},
		Sources: []analytics.TrafficSource{
			{Name: "google", Users: 150},
			{Name: "(direct)", Users: 60},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, analytics.WriteCSV(&buf, exportSummary()))

	expected := "Metric,Value\n" +
		"Active Users,210\n" +
		"Total Sessions,105\n" +
		"Total Page Views,410\n" +
		"\n" +
		"Top Pages\n" +
		"Page Title,Page Path,Views\n" +
		"\"Home\",\"/\",300\n" +
		"\"Say \"\"hi\"\"\",\"/a,b\",110\n" +
		"\n" +
		"Traffic Sources\n" +
		"Source,Users\n" +
		"\"google\",150\n" +
		"\"(direct)\",60"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSVEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, analytics.WriteCSV(&buf, &analytics.Summary{}))

	assert.Equal(t, "Metric,Value\nActive Users,0\nTotal Sessions,0\nTotal Page Views,0\n\nTop Pages\nPage Title,Page Path,Views\n\nTraffic Sources\nSource,Users", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, analytics.Export(&buf, analytics.ExportJSON, exportSummary(), "Last 7 Days", exportTime))

	assert.Contains(t, buf.String(), "\n  \"exportDate\": \"2024-03-15T09:30:00.000Z\",")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Last 7 Days", doc["dateRange"])
	assert.Equal(t, map[string]any{"totalUsers": 210.0, "totalSessions": 105.0, "totalPageViews": 410.0}, doc["metrics"])
	assert.Len(t, doc["topPages"], 2)
	assert.Len(t, doc["trafficSources"], 2)
}

func TestWriteJSONEmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, analytics.Export(&buf, analytics.ExportJSON, &analytics.Summary{}, "30 Days", exportTime))

	assert.Contains(t, buf.String(), `"topPages": []`)
	assert.Contains(t, buf.String(), `"trafficSources": []`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, analytics.Export(&buf, analytics.ExportYAML, exportSummary(), "Custom", exportTime))

	var doc analytics.ExportDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, analytics.NewExportDocument(exportSummary(), "Custom", exportTime), doc)
	assert.Contains(t, buf.String(), "totalPageViews: 410")
}

func TestParseExportFormat(t *testing.T) {
	testCases := map[string]analytics.ExportFormat{
		"":     analytics.ExportCSV,
		"csv":  analytics.ExportCSV,
		"JSON": analytics.ExportJSON,
		"yaml": analytics.ExportYAML,
		"yml":  analytics.ExportYAML,
	}
	for input, expected := range testCases {
		format, err := analytics.ParseExportFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, format)
	}

	_, err := analytics.ParseExportFormat("xml")
	assert.ErrorIs(t, err, analytics.ErrUnknownExportFormat)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "analytics-last-7-days-2024-03-15.csv", analytics.ExportFilename("Last 7 Days", analytics.ExportCSV, exportTime))
	assert.Equal(t, "analytics-30-days-2024-03-15.json", analytics.ExportFilename("30 Days", analytics.ExportJSON, exportTime))
	assert.Equal(t, "analytics-custom-2024-03-15.yaml", analytics.ExportFilename("Custom", analytics.ExportYAML, exportTime))
	assert.Equal(t, "analytics-previous-period-2024-03-15.csv", analytics.ExportFilename("Previous \t Period", analytics.ExportCSV, exportTime))
}

func TestExportContentTypes(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", analytics.ExportCSV.ContentType())
	assert.Equal(t, "application/json; charset=utf-8", analytics.ExportJSON.ContentType())
	assert.Equal(t, "application/yaml; charset=utf-8", analytics.ExportYAML.ContentType())
}
