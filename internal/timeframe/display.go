package timeframe

import (
	"fmt"
	"time"
)

// FormatError is returned when a report date is not an 8-digit YYYYMMDD
// calendar date.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timeframe: %q is not a YYYYMMDD date", e.Value)
}

// FormatDisplayDate converts a report date such as "20240115" into "Jan 15".
func FormatDisplayDate(yyyymmdd string) (string, error) {
	if len(yyyymmdd) != 8 {
		return "", &FormatError{Value: yyyymmdd}
	}
	for _, r := range yyyymmdd {
		if r < '0' || r > '9' {
			return "", &FormatError{Value: yyyymmdd}
		}
	}

	t, err := time.Parse(ReportDateLayout, yyyymmdd)
	if err != nil {
		return "", &FormatError{Value: yyyymmdd}
	}
	return t.Format("Jan 2"), nil
}

// DisplayDate is FormatDisplayDate with the raw value passed through when it
// cannot be parsed.
func DisplayDate(yyyymmdd string) string {
	formatted, err := FormatDisplayDate(yyyymmdd)
	if err != nil {
		return yyyymmdd
	}
	return formatted
}
