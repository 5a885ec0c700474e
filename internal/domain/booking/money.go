package booking

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DepositFor returns price × percentage / 100 rounded to cents.
// The percentage is clamped to [0, 100].
func DepositFor(price, percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsNegative() {
		percentage = decimal.Zero
	}
	if percentage.GreaterThan(hundred) {
		percentage = hundred
	}
	return price.Mul(percentage).Div(hundred).Round(2)
}
