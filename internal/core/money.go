// Package core provides amount parsing and the small derived calculations
// shown next to a budget.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts user input into a non-negative decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Signs,
// thousands separators and anything that is not a plain number are rejected
// with ErrInvalidAmount, so callers can refuse the input before touching the
// store.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// BudgetProgress is the derived spending view of one budget. It is never persisted.
type BudgetProgress struct {
	BudgetID   int64
	Budgeted   decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage float64
}

// NewBudgetProgress derives remaining and percentage from the budget amount and spent total.
func NewBudgetProgress(budgetID int64, budgeted, spent decimal.Decimal) BudgetProgress {
	return BudgetProgress{
		BudgetID:   budgetID,
		Budgeted:   budgeted,
		Spent:      spent,
		Remaining:  budgeted.Sub(spent),
		Percentage: PercentSpent(spent, budgeted),
	}
}

// PercentSpent returns spent/amount*100 clamped to [0, 100] and rounded to one
// decimal place. A zero amount yields 0.
func PercentSpent(spent, amount decimal.Decimal) float64 {
	if !amount.IsPositive() {
		return 0
	}
	pct := spent.Div(amount).Mul(hundred)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	f, _ := pct.Round(1).Float64()
	return f
}
