package report

import (
	"testing"
	"time"
)

func at(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, time.July, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		token string
		want  time.Time
	}{
		{"6m", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
		{"12m", time.Date(2023, time.July, 15, 10, 30, 0, 0, time.UTC)},
		{"ytd", at(2024, 1, 1)},
		{"YTD", at(2024, 1, 1)},
		{"", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
		// unknown tokens fall back to 6 months, silently
		{"xyz", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
		{"1y", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		got := Resolve(tc.token, now)
		if !got.Equal(tc.want) {
			t.Fatalf("case %d (%q): got %v, want %v", i, tc.token, got, tc.want)
		}
	}
}

func TestResolveClampsDayOfMonth(t *testing.T) {
	// Aug 31 minus 6 calendar months lands on Feb 29 in a leap year,
	// not on an AddDate-normalized March date.
	now := at(2024, 8, 31)
	if got, want := Resolve("6m", now), at(2024, 2, 29); !got.Equal(want) {
		t.Fatalf("leap year: got %v, want %v", got, want)
	}

	now = at(2025, 8, 31)
	if got, want := Resolve("6m", now), at(2025, 2, 28); !got.Equal(want) {
		t.Fatalf("non-leap year: got %v, want %v", got, want)
	}

	// 12 months back keeps the same day when it exists.
	now = at(2025, 3, 31)
	if got, want := Resolve("12m", now), at(2024, 3, 31); !got.Equal(want) {
		t.Fatalf("12m: got %v, want %v", got, want)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: at(2025, 3, 1), End: at(2025, 4, 1)}
	cases := []struct {
		t   time.Time
		in  bool
	}{
		{at(2025, 3, 1), true},  // start is inclusive
		{at(2025, 3, 15), true},
		{at(2025, 4, 1), false}, // end is exclusive
		{at(2025, 2, 28), false},
	}
	for i, tc := range cases {
		if got := w.Contains(tc.t); got != tc.in {
			t.Fatalf("case %d (%v): got %v, want %v", i, tc.t, got, tc.in)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	w := monthWindow(time.Date(2025, time.January, 17, 23, 5, 0, 0, time.UTC))
	if !w.Start.Equal(at(2025, 1, 1)) {
		t.Fatalf("start: got %v", w.Start)
	}
	if !w.End.Equal(at(2025, 2, 1)) {
		t.Fatalf("end: got %v", w.End)
	}

	// December rolls the end into the next year.
	w = monthWindow(at(2025, 12, 31))
	if !w.End.Equal(at(2026, 1, 1)) {
		t.Fatalf("year rollover: got %v", w.End)
	}
}
