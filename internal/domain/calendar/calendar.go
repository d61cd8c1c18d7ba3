// Package calendar computes recurrence periods: the [start, end] interval containing a
// date for a granularity and its start-offset configuration, and the gap-free succession
// of such intervals.
//
// All dates are calendar days at midnight UTC. Functions are pure.
package calendar

import (
	"fmt"
	"time"
)

const (
	dayLayout   = "02 Jan 2006"
	monthLayout = "Jan 2006"
)

// Config describes how periods of one granularity are aligned
type Config struct {
	Granularity Granularity

	// For monthly: day of month a period starts on (1-31, clamped to the month length).
	// Zero means 1.
	MonthStartDay int

	// For weekly: ISO weekday a period starts on (1 = Monday ... 7 = Sunday).
	// Zero means Monday.
	WeekStartDay int

	// For quarterly, half-yearly and yearly: month the fiscal year starts in.
	// Zero means January.
	FiscalYearStartMonth time.Month
}

// Window is one period [Start, End] with its display name
type Window struct {
	Start time.Time
	End   time.Time
	Name  string
}

// Contains returns true if the day is within [Start, End]
func (w Window) Contains(t time.Time) bool {
	d := Truncate(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of days in the window, inclusive
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// String returns a string representation of the window
func (w Window) String() string {
	return fmt.Sprintf("%s [%s, %s]", w.Name, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
}

func (c Config) monthStartDay() int {
	if c.MonthStartDay < 1 || c.MonthStartDay > 31 {
		return 1
	}
	return c.MonthStartDay
}

func (c Config) weekStart() time.Weekday {
	if c.WeekStartDay < 1 || c.WeekStartDay > 7 {
		return time.Monday
	}
	return time.Weekday(c.WeekStartDay % 7)
}

func (c Config) fiscalStart() time.Month {
	if c.FiscalYearStartMonth < time.January || c.FiscalYearStartMonth > time.December {
		return time.January
	}
	return c.FiscalYearStartMonth
}

// WithGranularity returns a copy of the config with another granularity and the same offsets
func (c Config) WithGranularity(g Granularity) Config {
	c.Granularity = g
	return c
}

// PeriodContaining returns the period that contains the given date.
// A non-recurring granularity yields the single-day window of the date.
func (c Config) PeriodContaining(date time.Time) Window {
	d := Truncate(date)

	switch c.Granularity {
	case GranularityWeekly:
		offset := (int(d.Weekday()) - int(c.weekStart()) + 7) % 7
		start := d.AddDate(0, 0, -offset)
		return Window{
			Start: start,
			End:   start.AddDate(0, 0, 6),
			Name:  "Week of " + start.Format(dayLayout),
		}

	case GranularityMonthly:
		return c.monthlyPeriod(d)

	case GranularityQuarterly:
		return c.fiscalPeriod(d, 3)

	case GranularityHalfYearly:
		return c.fiscalPeriod(d, 6)

	case GranularityYearly:
		return c.fiscalPeriod(d, 12)

	default:
		return Window{Start: d, End: d, Name: d.Format(dayLayout)}
	}
}

// Next returns the period immediately following w
func (c Config) Next(w Window) Window {
	return c.PeriodContaining(w.End.AddDate(0, 0, 1))
}

// Between returns every period from the one containing from up to and including the
// one containing through, in chronological order
func (c Config) Between(from, through time.Time) []Window {
	through = Truncate(through)
	if Truncate(from).After(through) {
		return nil
	}

	var windows []Window
	for w := c.PeriodContaining(from); !w.Start.After(through); w = c.Next(w) {
		windows = append(windows, w)
		if !c.Granularity.IsRecurring() {
			break
		}
	}
	return windows
}

// Split divides w into consecutive sub-periods of a finer granularity, clipped to w.
// If finer does not subdivide the config granularity, w is returned unchanged.
func (c Config) Split(w Window, finer Granularity) []Window {
	if !finer.FinerThan(c.Granularity) {
		return []Window{w}
	}

	sub := c.WithGranularity(finer)
	var parts []Window
	for full := sub.PeriodContaining(w.Start); !full.Start.After(w.End); full = sub.Next(full) {
		p := full
		if p.Start.Before(w.Start) {
			p.Start = w.Start
			if finer == GranularityWeekly {
				p.Name = "Week of " + p.Start.Format(dayLayout)
			}
		}
		if p.End.After(w.End) {
			p.End = w.End
		}
		parts = append(parts, p)
	}
	return parts
}

func (c Config) monthlyPeriod(d time.Time) Window {
	day := c.monthStartDay()
	start := Clamp(d.Year(), d.Month(), day)
	if d.Before(start) {
		prev := AddMonths(Date(d.Year(), d.Month(), 1), -1)
		start = Clamp(prev.Year(), prev.Month(), day)
	}
	next := AddMonths(Date(start.Year(), start.Month(), 1), 1)
	end := Clamp(next.Year(), next.Month(), day).AddDate(0, 0, -1)

	return Window{Start: start, End: end, Name: start.Format(monthLayout)}
}

// fiscalPeriod returns the block of months (3, 6 or 12) that contains d, counted from
// the fiscal year start
func (c Config) fiscalPeriod(d time.Time, months int) Window {
	fs := c.fiscalStart()
	fyStartYear := d.Year()
	if d.Month() < fs {
		fyStartYear--
	}
	fyStart := Date(fyStartYear, fs, 1)

	index := (int(d.Month()) - int(fs) + 12) % 12 / months
	start := AddMonths(fyStart, index*months)
	end := AddMonths(start, months).AddDate(0, 0, -1)

	// fiscal year is labeled by the calendar year it ends in
	label := AddMonths(fyStart, 12).AddDate(0, 0, -1).Year()

	var name string
	switch months {
	case 3:
		name = fmt.Sprintf("Q%d FY%d", index+1, label)
	case 6:
		name = fmt.Sprintf("H%d FY%d", index+1, label)
	default:
		name = fmt.Sprintf("FY%d", label)
	}
	return Window{Start: start, End: end, Name: name}
}
