package report

import (
	"strings"
	"time"
)

// Window is a half-open time interval [Start, End) bounding which records
// are aggregated.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Resolve maps a report range token to the window start; the window end is
// always the supplied now. Unknown tokens fall back to the 6-month default
// rather than erroring, so a malformed query parameter can never break a
// report.
func Resolve(token string, now time.Time) time.Time {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "12m":
		return minusMonths(now, 12)
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return minusMonths(now, 6)
	}
}

// minusMonths subtracts calendar months, clamping the day-of-month to the
// length of the target month (Mar 31 minus one month is Feb 28/29).
// time.AddDate would normalize the overflow into the next month instead.
func minusMonths(t time.Time, months int) time.Time {
	y := t.Year()
	m := int(t.Month()) - months
	for m < 1 {
		m += 12
		y--
	}
	d := t.Day()
	if last := daysIn(y, time.Month(m)); d > last {
		d = last
	}
	return time.Date(y, time.Month(m), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// day 0 of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthWindow returns the calendar month containing now as a half-open
// window [first instant, first instant of next month).
func monthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}
