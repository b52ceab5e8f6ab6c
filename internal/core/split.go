package core

import "github.com/shopspring/decimal"

// Split is the 50/30/20 breakdown of an income.
type Split struct {
	Needs   decimal.Decimal
	Wants   decimal.Decimal
	Savings decimal.Decimal
}

var (
	needsShare = decimal.NewFromFloat(0.5)
	wantsShare = decimal.NewFromFloat(0.3)
)

// SplitIncome divides income into needs (50%), wants (30%) and savings (20%).
// Needs and wants are rounded to cents; savings takes the remainder so the
// three parts always add up to the income.
func SplitIncome(income decimal.Decimal) Split {
	needs := income.Mul(needsShare).Round(2)
	wants := income.Mul(wantsShare).Round(2)
	return Split{
		Needs:   needs,
		Wants:   wants,
		Savings: income.Sub(needs).Sub(wants),
	}
}
