package domain

import "math"

// Round rounds val to the given number of decimal places. Money values are
// rounded to 2 places, percentages to 2, prices to 2.
func Round(val float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(val*shift) / shift
}
