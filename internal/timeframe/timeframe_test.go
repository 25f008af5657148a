// Package timeframe_test contains tests for the timeframe package
package timeframe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga4dash/internal/timeframe"
)

func TestPreviousPeriod(t *testing.T) {
	testCases := []struct {
		name          string
		start         string
		end           string
		expectedStart string
		expectedEnd   string
	}{
		{
			name:          "30 day window crossing a year boundary",
			start:         "2024-01-15",
			end:           "2024-02-14",
			expectedStart: "2023-12-15",
			expectedEnd:   "2024-01-14",
		},
		{
			name:          "March resolves into leap-year February",
			start:         "2024-03-01",
			end:           "2024-03-31",
			expectedStart: "2024-01-30",
			expectedEnd:   "2024-02-29",
		},
		{
			name:          "March resolves into non-leap February",
			start:         "2023-03-01",
			end:           "2023-03-31",
			expectedStart: "2023-01-29",
			expectedEnd:   "2023-02-28",
		},
		{
			name:          "same day range has zero duration",
			start:         "2024-05-10",
			end:           "2024-05-10",
			expectedStart: "2024-05-09",
			expectedEnd:   "2024-05-09",
		},
		{
			name:          "first week of the year",
			start:         "2024-01-01",
			end:           "2024-01-07",
			expectedStart: "2023-12-25",
			expectedEnd:   "2023-12-31",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			previous, err := timeframe.PreviousPeriod(tc.start, tc.end)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStart, previous.StartDate)
			assert.Equal(t, tc.expectedEnd, previous.EndDate)
			assert.Equal(t, timeframe.LabelPreviousPeriod, previous.Label)
		})
	}
}

func TestPreviousPeriodKeepsDurationAndContiguity(t *testing.T) {
	starts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	for _, start := range starts {
		for n := 0; n <= 400; n += 7 {
			end := start.AddDate(0, 0, n)
			previous := timeframe.PreviousPeriodOf(start, end)

			prevStart, err := timeframe.ParseDate(previous.StartDate)
			require.NoError(t, err)
			prevEnd, err := timeframe.ParseDate(previous.EndDate)
			require.NoError(t, err)

			assert.Equal(t, n, timeframe.DaysBetween(prevStart, prevEnd), "duration for start %s n=%d", start.Format(timeframe.DateLayout), n)
			assert.Equal(t, start.AddDate(0, 0, -1), prevEnd, "contiguity for start %s n=%d", start.Format(timeframe.DateLayout), n)
		}
	}
}

func TestPreviousPeriodAcrossCenturies(t *testing.T) {
	previous, err := timeframe.PreviousPeriod("1800-01-01", "2200-01-01")
	require.NoError(t, err)
	assert.Equal(t, "1399-12-31", previous.StartDate)
	assert.Equal(t, "1799-12-31", previous.EndDate)

	start := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 182621, timeframe.DaysBetween(start, end))

	previous = timeframe.PreviousPeriodOf(start, end)
	assert.Equal(t, "0999-12-31", previous.StartDate)
	assert.Equal(t, "1499-12-31", previous.EndDate)
}

func TestPreviousPeriodRejectsBadInput(t *testing.T) {
	_, err := timeframe.PreviousPeriod("2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, timeframe.ErrInvertedRange)

	_, err = timeframe.PreviousPeriod("2024/01/01", "2024-01-31")
	assert.ErrorIs(t, err, timeframe.ErrInvalidDate)

	_, err = timeframe.PreviousPeriod("2024-01-01", "today")
	assert.ErrorIs(t, err, timeframe.ErrInvalidDate)
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	testCases := []struct {
		value    string
		expected time.Time
	}{
		{value: "today", expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{value: "yesterday", expected: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{value: "30daysAgo", expected: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{value: "0daysAgo", expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{value: "2023-12-31", expected: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.value, func(t *testing.T) {
			got, err := timeframe.ResolveDate(tc.value, now)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	for _, bad := range []string{"", "tomorrow", "daysAgo", "-3daysAgo", "2024-13-01", "15/03/2024"} {
		_, err := timeframe.ResolveDate(bad, now)
		assert.ErrorIs(t, err, timeframe.ErrInvalidDate, "value %q", bad)
	}
}

func TestFormatDisplayDate(t *testing.T) {
	formatted, err := timeframe.FormatDisplayDate("20240115")
	require.NoError(t, err)
	assert.Equal(t, "Jan 15", formatted)

	for input, expected := range map[string]string{
		"20240101": "Jan 1",
		"20240615": "Jun 15",
		"20241225": "Dec 25",
		"20240229": "Feb 29",
	} {
		got, err := timeframe.FormatDisplayDate(input)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestFormatDisplayDateRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "2024011", "202401150", "2024-0115", "abcdefgh", "20240230", "20231301", "+2024011"} {
		_, err := timeframe.FormatDisplayDate(input)

		var formatErr *timeframe.FormatError
		require.ErrorAs(t, err, &formatErr, "input %q", input)
		assert.Equal(t, input, formatErr.Value)

		assert.Equal(t, input, timeframe.DisplayDate(input), "raw value passes through")
	}
}
