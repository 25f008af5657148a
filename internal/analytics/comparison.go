package analytics

import "math"

// PercentChange returns the signed percentage change from previous to current.
// A zero baseline yields 100 for any growth and 0 otherwise.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return ((current - previous) / previous) * 100
}

// BuildTrend compares two totals. Ties count as up.
func BuildTrend(current, previous int64) Trend {
	change := PercentChange(float64(current), float64(previous))
	return Trend{
		Value: FormatFixed1(math.Abs(change)),
		IsUp:  current >= previous,
	}
}
