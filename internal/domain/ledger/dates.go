package ledger

import "time"

// Transaction dates, due dates and date filters are calendar days. A
// date-only value is held as midnight UTC of that day, which is what the
// API and the CLI parse "2006-01-02" into and what the database returns.

// CalendarDay returns the date of t, read in t's own zone, as midnight UTC.
// Use it to turn "now" in the configured timezone into today's date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StoredDay returns the calendar day of a stored date, which is its UTC date
func StoredDay(t time.Time) time.Time {
	return CalendarDay(t.UTC())
}

// DayEnd returns the last instant of the calendar day starting at day
func DayEnd(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Nanosecond)
}
