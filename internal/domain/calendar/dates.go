package calendar

import "time"

// Date returns midnight UTC for the given calendar day.
// Out-of-range days are not normalized; use Clamp for that.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t and moves it to UTC, keeping the calendar day
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Clamp returns the given day of month, or the last day of the month if it is shorter
func Clamp(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// AddMonths adds n calendar months to t, clamping the day to the target month length.
// 31 Jan + 1 month = 28/29 Feb.
func AddMonths(t time.Time, n int) time.Time {
	y, m := t.Year(), int(t.Month())-1+n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	return Clamp(y, time.Month(m+1), t.Day())
}

// EndOfMonth returns the last day of t's month
func EndOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), DaysIn(t.Year(), t.Month()))
}
