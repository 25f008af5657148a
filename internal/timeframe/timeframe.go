package timeframe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date layouts used on the wire
const (
	DateLayout       = "2006-01-02" // request and upstream query dates
	ReportDateLayout = "20060102"   // "date" dimension values returned by reports
)

// Relative date tokens understood by the upstream reporting source
const (
	TokenToday     = "today"
	TokenYesterday = "yesterday"
)

// Range labels
const (
	LabelCustom         = "Custom"
	LabelDefault        = "30 Days"
	LabelPreviousPeriod = "Previous Period"
)

const (
	DefaultStartDate = "30daysAgo"
	DefaultEndDate   = TokenToday
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvertedRange = errors.New("start date must not be after end date")

	daysAgoPattern = regexp.MustCompile(`^(\d+)daysAgo$`)
)

// DateRange is a report period. StartDate and EndDate are either literal
// YYYY-MM-DD dates or relative tokens ("today", "yesterday", "NdaysAgo").
type DateRange struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	Label     string `json:"label" yaml:"label"`
}

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// PreviousPeriod returns the period of identical day-count duration that ends
// the day before startDate. Both inputs must be literal YYYY-MM-DD dates with
// startDate <= endDate.
func PreviousPeriod(startDate, endDate string) (DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return DateRange{}, err
	}
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, startDate, endDate)
	}
	return PreviousPeriodOf(start, end), nil
}

// PreviousPeriodOf is PreviousPeriod over already-parsed calendar dates.
func PreviousPeriodOf(start, end time.Time) DateRange {
	start = truncateToDay(start)
	end = truncateToDay(end)

	durationDays := DaysBetween(start, end)

	previousEnd := start.AddDate(0, 0, -1)
	previousStart := previousEnd.AddDate(0, 0, -durationDays)

	return DateRange{
		StartDate: previousStart.Format(DateLayout),
		EndDate:   previousEnd.Format(DateLayout),
		Label:     LabelPreviousPeriod,
	}
}

// DaysBetween returns floor((end - start) / 1 day) for calendar dates. A
// same-day range is 0.
func DaysBetween(start, end time.Time) int {
	// Civil dates are re-anchored in UTC so DST transitions never shorten a day.
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int((e.Unix() - s.Unix()) / 86400)
}

// ParseDate parses a literal YYYY-MM-DD date as a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	return t, nil
}

// IsLiteral reports whether value is a literal YYYY-MM-DD date.
func IsLiteral(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// ResolveDate turns a literal date or relative token into a calendar date
// relative to now. The result is midnight in now's location.
func ResolveDate(value string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch value {
	case TokenToday:
		return today, nil
	case TokenYesterday:
		return today.AddDate(0, 0, -1), nil
	}

	if m := daysAgoPattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, value)
		}
		return today.AddDate(0, 0, -n), nil
	}

	t, err := time.ParseInLocation(DateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD, today, yesterday or NdaysAgo", ErrInvalidDate, value)
	}
	return t, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
