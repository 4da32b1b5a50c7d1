package utils

import "github.com/shopspring/decimal"

// RoundCents rounds x half away from zero to 2 decimal places, the precision
// of the numeric(14,2) amount columns.
func RoundCents(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
