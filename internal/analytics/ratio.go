package analytics

import "math"

// Round rounds half toward positive infinity, so -2.5 becomes -2 and 2.5 becomes 3
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// SafeRatio divides num by den, returning 0 when den is 0
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// SafePercent is the rounded whole percentage of num over den, 0 when den is 0
func SafePercent(num, den float64) int {
	return int(Round(SafeRatio(num, den) * 100))
}

// PercentChange compares two period values. A zero previous value yields 100
// when the current value is positive and 0 otherwise.
func PercentChange(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(Round((current - previous) / previous * 100))
}
