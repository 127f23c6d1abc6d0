package money

import "github.com/shopspring/decimal"

// Scale is the number of fractional digits kept for monetary amounts.
const Scale = 2

// DefaultCommissionRate is the platform cut applied when none is configured.
var DefaultCommissionRate = decimal.RequireFromString("0.075")

// Breakdown is the settlement split for a single order.
type Breakdown struct {
	Total      decimal.Decimal
	Commission decimal.Decimal
	SellerNet  decimal.Decimal
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Compute derives total, commission and seller net. The net is obtained by
// subtraction so Commission + SellerNet always equals Total.
func Compute(quantity, unitPrice, rate decimal.Decimal) Breakdown {
	total := Round2(quantity.Mul(unitPrice))
	commission := Round2(total.Mul(rate))
	return Breakdown{
		Total:      total,
		Commission: commission,
		SellerNet:  total.Sub(commission),
	}
}

// Balanced reports whether the breakdown sums exactly.
func (b Breakdown) Balanced() bool {
	return b.Commission.Add(b.SellerNet).Equal(b.Total)
}

// Settleable reports whether both the buyer charge and the seller payout are
// at least one cent. Sub-cent lines round to zero and cannot be held or released.
func (b Breakdown) Settleable() bool {
	return b.Total.IsPositive() && b.SellerNet.IsPositive()
}
