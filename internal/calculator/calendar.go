package calculator

import (
	"math"
	"time"
)

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay advances t by one calendar day, then keeps advancing past weekends.
// t itself is never checked, so a weekend t still yields the following Monday.
func NextBusinessDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// DaysBetween returns the whole calendar days from a to b, ignoring weekends.
func DaysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

// CountVisitedDays counts the dates the pull loop visits in [start, stop): start itself,
// then every business day after it.
func CountVisitedDays(start, stop time.Time) int {
	n := 0
	for cur := start; cur.Before(stop); cur = NextBusinessDay(cur) {
		n++
	}
	return n
}

// EstimateCompletion projects when remainingDays more pulls of avgSeconds each will finish.
func EstimateCompletion(now time.Time, avgSeconds float64, remainingDays int) time.Time {
	secs := avgSeconds * float64(remainingDays)
	return now.Add(time.Duration(secs * float64(time.Second)))
}
