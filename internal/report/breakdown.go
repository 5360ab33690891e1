package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"trackmyfin/internal/core"
)

// CategoryShare is one category's slice of the total expenses in a window.
type CategoryShare struct {
	Name       string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// Breakdown groups expense transactions by category and computes each
// category's share of the total, rounded half-up to 2 places. Transactions
// without a category land in the "Uncategorized" bucket. An all-income or
// empty input returns an empty result.
//
// Categories are ordered by total descending; equal totals are broken by
// display name ascending so the ordering is deterministic.
func Breakdown(txs []core.Transaction) []CategoryShare {
	totals := make(map[core.CategoryKey]decimal.Decimal)
	grand := decimal.Zero
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		k := core.KeyFor(t)
		totals[k] = totals[k].Add(t.Amount)
		grand = grand.Add(t.Amount)
	}
	if len(totals) == 0 {
		return nil
	}

	shares := make([]CategoryShare, 0, len(totals))
	for k, total := range totals {
		// Zero-amount expenses are valid, so grand can be zero even with
		// populated buckets. Shares are then reported as 0%.
		pct := decimal.Zero
		if !grand.IsZero() {
			pct = total.Mul(oneHundred).DivRound(grand, 2)
		}
		shares = append(shares, CategoryShare{
			Name:       k.Label(),
			Amount:     total,
			Percentage: pct,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].Amount.Equal(shares[j].Amount) {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}
