package domain

import "github.com/shopspring/decimal"

// Round rounds v half-up to the given number of decimal places. Float
// arithmetic alone misrounds the halfway cases (0.115, 33.895), so the value
// goes through decimal for the quantize step.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Round2 rounds to cents, the precision of stored money amounts
func Round2(v float64) float64 {
	return Round(v, 2)
}

// Round5 rounds to the 5-decimal precision used for stored per-share credits,
// keeping later ratios from compounding rounding error.
func Round5(v float64) float64 {
	return Round(v, 5)
}

// Round1 rounds to one decimal, the precision of stored ARORC percentages
func Round1(v float64) float64 {
	return Round(v, 1)
}
