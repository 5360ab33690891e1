// Package report turns a user's record snapshot into dashboard statistics
// and chart series. It is pure and stateless: callers load the records, the
// engine computes, nothing is cached or mutated. Empty inputs, zero totals
// and unknown range tokens all produce well-defined zero/empty results; the
// only error the engine originates is a data-integrity fault in a record.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"trackmyfin/internal/core"
)

// Engine computes reports against an injected clock so "now"-dependent
// windows and month labels are deterministic under test.
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Stats is the dashboard headline figures, computed fresh on every call.
type Stats struct {
	TotalBalance    decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	SavingsRate     decimal.Decimal
}

// ExpenseChart holds the two chart series for the expenses view.
type ExpenseChart struct {
	MonthlyData  []MonthPoint
	CategoryData []CategoryShare
}

// Stats computes balances, current-calendar-month totals and the savings
// rate over the user's full record snapshot. TotalBalance may be negative;
// every other figure is a sum of a homogeneous kind and never is.
func (e *Engine) Stats(txs []core.Transaction, sals []core.Salary) (Stats, error) {
	if err := checkIntegrity(txs, sals); err != nil {
		return Stats{}, err
	}

	month := monthWindow(e.now())

	totalIncome := IncomeTotal(txs, sals, nil)
	totalExpenses := SumTransactions(txs, core.Expense, nil)
	monthlyIncome := IncomeTotal(txs, sals, &month)
	monthlyExpenses := SumTransactions(txs, core.Expense, &month)

	return Stats{
		TotalBalance:    totalIncome.Sub(totalExpenses),
		MonthlyIncome:   monthlyIncome,
		MonthlyExpenses: monthlyExpenses,
		SavingsRate:     SavingsRate(monthlyIncome, monthlyExpenses),
	}, nil
}

// ExpenseChart resolves the range token, scopes the snapshot to the
// resulting window and computes the monthly series and category breakdown.
func (e *Engine) ExpenseChart(txs []core.Transaction, rangeToken string) (ExpenseChart, error) {
	if err := checkIntegrity(txs, nil); err != nil {
		return ExpenseChart{}, err
	}

	now := e.now()
	start := Resolve(rangeToken, now)

	scoped := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.OccurredAt.Before(start) || t.OccurredAt.After(now) {
			continue
		}
		scoped = append(scoped, t)
	}

	return ExpenseChart{
		MonthlyData:  MonthlySeries(scoped, start, now),
		CategoryData: Breakdown(scoped),
	}, nil
}

// checkIntegrity rejects records that would misstate balances if summed.
func checkIntegrity(txs []core.Transaction, sals []core.Salary) error {
	for _, t := range txs {
		if t.Amount.IsNegative() {
			return &core.InvalidRecordError{Entity: "transaction", ID: t.ID, Reason: "negative amount"}
		}
		if t.OccurredAt.IsZero() {
			return &core.InvalidRecordError{Entity: "transaction", ID: t.ID, Reason: "zero timestamp"}
		}
	}
	for _, s := range sals {
		if s.Amount.IsNegative() {
			return &core.InvalidRecordError{Entity: "salary", ID: s.ID, Reason: "negative amount"}
		}
		if s.ReceivedAt.IsZero() {
			return &core.InvalidRecordError{Entity: "salary", ID: s.ID, Reason: "zero timestamp"}
		}
	}
	return nil
}
