package rental

import "time"

// DateLayout is the wire format for rental dates. Rentals are priced per
// whole day, so only the calendar date matters.
const DateLayout = "2006-01-02"

// DurationDays returns the number of billable days for a rental spanning
// [start, end]. Both boundary days count, so start == end is a 1-day rental.
func DurationDays(start, end time.Time) int {
	s := truncateToDay(start)
	e := truncateToDay(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/(24*time.Hour)) + 1
}

// TotalAmount is the price of the whole rental at the given daily rate.
func TotalAmount(start, end time.Time, dailyRate float64) float64 {
	return float64(DurationDays(start, end)) * dailyRate
}

// Overlaps reports whether two date ranges intersect, boundary days included:
// a rental ending on the exact start day of another is a conflict, never a
// back-to-back pair.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	s1, e1 := truncateToDay(start1), truncateToDay(end1)
	s2, e2 := truncateToDay(start2), truncateToDay(end2)
	return !s1.After(e2) && !s2.After(e1)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
