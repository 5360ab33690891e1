package report

import (
	"time"

	"github.com/shopspring/decimal"

	"trackmyfin/internal/core"
)

// monthLabelFormat renders "Mar 2025".
const monthLabelFormat = "Jan 2006"

// MonthPoint is one calendar-month bucket in the expense time series.
type MonthPoint struct {
	Month  string
	Amount decimal.Decimal
}

// MonthlySeries buckets expense transactions into calendar months from
// windowStart's month through now's month inclusive. Every month is
// zero-filled before population, so the series length depends only on the
// window, not on how many records exist. Buckets appear in calendar order.
//
// Income records never contribute. A transaction dated outside the labeled
// months (inconsistent data) is dropped without creating a bucket.
func MonthlySeries(txs []core.Transaction, windowStart, now time.Time) []MonthPoint {
	var points []MonthPoint
	index := make(map[string]int)

	y, m := windowStart.Year(), windowStart.Month()
	endY, endM := now.Year(), now.Month()
	for y < endY || (y == endY && m <= endM) {
		label := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format(monthLabelFormat)
		index[label] = len(points)
		points = append(points, MonthPoint{Month: label, Amount: decimal.Zero})
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}

	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		if i, ok := index[t.OccurredAt.Format(monthLabelFormat)]; ok {
			points[i].Amount = points[i].Amount.Add(t.Amount)
		}
	}

	return points
}
