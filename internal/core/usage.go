package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// BudgetUsage is the spending recorded against a budget within its period.
type BudgetUsage struct {
	Budget      Budget
	Spent       Money
	Remaining   Money
	PercentUsed decimal.Decimal
	Exceeded    bool
}

// ComputeUsage derives remaining amount and percentage from the expense total.
// Remaining goes negative once the limit is exceeded.
func ComputeUsage(b Budget, spent Money) BudgetUsage {
	u := BudgetUsage{
		Budget:    b,
		Spent:     spent,
		Remaining: b.Limit.Sub(spent),
		Exceeded:  spent.GreaterThan(b.Limit.Decimal),
	}
	if b.Limit.IsPositive() {
		u.PercentUsed = spent.Decimal.Mul(hundred).DivRound(b.Limit.Decimal, MoneyScale)
	}
	return u
}

// Crossed reports whether usage reached threshold percent.
func (u BudgetUsage) Crossed(threshold decimal.Decimal) bool {
	return u.PercentUsed.GreaterThanOrEqual(threshold)
}
