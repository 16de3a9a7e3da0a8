// Package money does the multiplications and sums behind stored totals in
// decimal arithmetic, so that 0.1 × 3 is stored as 0.3.
package money

import "github.com/shopspring/decimal"

// Multiply returns quantity × unitPrice.
func Multiply(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).InexactFloat64()
}

// Sum adds the values.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
