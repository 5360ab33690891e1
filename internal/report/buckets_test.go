package report

import (
	"testing"

	"trackmyfin/internal/core"
)

func TestMonthlySeriesZeroFill(t *testing.T) {
	// 6m window resolved at 2024-07-15 starts 2024-01-15: seven labeled
	// months, Jan through Jul, all present with no records at all.
	now := at(2024, 7, 15)
	start := Resolve("6m", now)

	points := MonthlySeries(nil, start, now)
	want := []string{"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024", "Jul 2024"}
	if len(points) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.Month != want[i] {
			t.Fatalf("bucket %d: got %q, want %q", i, p.Month, want[i])
		}
		if !p.Amount.IsZero() {
			t.Fatalf("bucket %d: expected zero fill, got %s", i, p.Amount)
		}
	}
}

func TestMonthlySeriesPopulation(t *testing.T) {
	now := at(2024, 7, 15)
	start := Resolve("6m", now)

	txs := []core.Transaction{
		tx(core.Expense, "10.00", at(2024, 1, 20)),
		tx(core.Expense, "5.50", at(2024, 1, 31)),
		tx(core.Expense, "7.25", at(2024, 7, 1)),
		tx(core.Income, "9999", at(2024, 3, 3)),   // income never appears
		tx(core.Expense, "42.00", at(2023, 12, 30)), // outside labels: dropped
	}
	points := MonthlySeries(txs, start, now)
	if len(points) != 7 {
		t.Fatalf("got %d buckets, want 7", len(points))
	}
	if !points[0].Amount.Equal(amt("15.50")) {
		t.Fatalf("Jan: got %s, want 15.50", points[0].Amount)
	}
	if !points[2].Amount.IsZero() {
		t.Fatalf("Mar: got %s, want 0", points[2].Amount)
	}
	if !points[6].Amount.Equal(amt("7.25")) {
		t.Fatalf("Jul: got %s, want 7.25", points[6].Amount)
	}
}

func TestMonthlySeriesYearBoundary(t *testing.T) {
	// 12m at 2025-02-10 spans Feb 2024 .. Feb 2025: thirteen buckets in
	// calendar order, not label-sorted order.
	now := at(2025, 2, 10)
	start := Resolve("12m", now)

	points := MonthlySeries(nil, start, now)
	if len(points) != 13 {
		t.Fatalf("got %d buckets, want 13", len(points))
	}
	if points[0].Month != "Feb 2024" {
		t.Fatalf("first: got %q", points[0].Month)
	}
	if points[10].Month != "Dec 2024" {
		t.Fatalf("eleventh: got %q", points[10].Month)
	}
	if points[11].Month != "Jan 2025" {
		t.Fatalf("twelfth: got %q", points[11].Month)
	}
	if points[12].Month != "Feb 2025" {
		t.Fatalf("last: got %q", points[12].Month)
	}
}

func TestMonthlySeriesLengthIndependentOfRecords(t *testing.T) {
	now := at(2025, 6, 1)
	start := Resolve("ytd", now)

	var many []core.Transaction
	for i := 0; i < 50; i++ {
		many = append(many, tx(core.Expense, "1.00", at(2025, 3, 10)))
	}
	if got := len(MonthlySeries(many, start, now)); got != 6 {
		t.Fatalf("got %d buckets, want 6 (Jan-Jun)", got)
	}
	if got := len(MonthlySeries(nil, start, now)); got != 6 {
		t.Fatalf("empty: got %d buckets, want 6", got)
	}
}
