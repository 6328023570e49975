package utils

import "math"

// RoundFloat rounds val to precision decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Percent returns part/total as a percentage rounded to one decimal, or 0
// when total is zero.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundFloat(float64(part)/float64(total)*100, 1)
}
