package billing

import "github.com/shopspring/decimal"

// GSTRate is the flat goods-and-services tax rate applied to subtotals.
var GSTRate = decimal.New(1, -1)

// RoundHalfUp rounds a monetary value to cents, half away from zero.
// Every amount that leaves a computation goes through this exactly once;
// intermediate figures stay unrounded.
func RoundHalfUp(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// SumAmounts adds already-rounded line item amounts without re-rounding.
func SumAmounts(items []LineItem) decimal.Decimal {
	total := decimal.Decimal{}
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
