package report

import (
	"github.com/shopspring/decimal"

	"trackmyfin/internal/core"
)

var oneHundred = decimal.NewFromInt(100)

// SumTransactions totals transactions of the given kind. A nil window means
// all time. An empty or non-matching set sums to zero, never an error.
func SumTransactions(txs []core.Transaction, kind core.Kind, win *Window) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Kind != kind {
			continue
		}
		if win != nil && !win.Contains(t.OccurredAt) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// SumSalaries totals salary records, optionally bounded by a window.
func SumSalaries(sals []core.Salary, win *Window) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sals {
		if win != nil && !win.Contains(s.ReceivedAt) {
			continue
		}
		total = total.Add(s.Amount)
	}
	return total
}

// IncomeTotal adds income transactions and salary records. The two record
// families are disjoint, so their sums are added, never deduplicated. The
// same operation serves the all-time (nil window) and monthly totals.
func IncomeTotal(txs []core.Transaction, sals []core.Salary, win *Window) decimal.Decimal {
	return SumTransactions(txs, core.Income, win).Add(SumSalaries(sals, win))
}

// SavingsRate returns the savings rate as a percentage: the income fraction
// left after expenses, divided half-up to 4 places before the multiply by
// 100. Zero income yields zero regardless of expenses. The rate is not
// clamped; expenses above income give a negative rate.
func SavingsRate(income, expenses decimal.Decimal) decimal.Decimal {
	if income.Sign() <= 0 {
		return decimal.Zero
	}
	return income.Sub(expenses).DivRound(income, 4).Mul(oneHundred)
}
