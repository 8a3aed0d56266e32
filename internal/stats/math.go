package stats

import (
	"math"
	"slices"
	"time"
)

// CalculateMedianDiscrete finds the median value in a slice of integers.
func CalculateMedianDiscrete(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}

// ClampPercent bounds v to [0, 100].
func ClampPercent(v int) int {
	return max(0, min(100, v))
}

// Percent returns round(100 * part / whole), clamped to [0, 100]. A zero or
// negative whole yields 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return ClampPercent(int(math.Round(100 * float64(part) / float64(whole))))
}

// DaysBetween returns the number of started days from a to b. It is negative
// when b precedes a. Spans longer than time.Duration can hold are exact.
func DaysBetween(a, b time.Time) int {
	secs := float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
	return int(math.Ceil(secs / 86400))
}

// Mean returns the rounded arithmetic mean, or 0 for an empty slice.
func Mean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
