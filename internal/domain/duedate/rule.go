// Package duedate resolves the due date of a checklist task inside a period from a
// layered rule: exact date, month and day, weekday, bare day of month, then an offset
// from the period end.
package duedate

import (
	"fmt"
	"time"

	"github.com/practice/backend/internal/domain/calendar"
)

// OffsetType is the unit of an offset applied to the period end
type OffsetType string

const (
	OffsetDays   OffsetType = "days"
	OffsetWeeks  OffsetType = "weeks"
	OffsetMonths OffsetType = "months"
)

// IsValid checks if the offset type is known
func (t OffsetType) IsValid() bool {
	switch t {
	case OffsetDays, OffsetWeeks, OffsetMonths:
		return true
	}
	return false
}

// String returns the string representation of OffsetType
func (t OffsetType) String() string {
	return string(t)
}

// Rule is the effective due-date configuration of one task
type Rule struct {
	// Granularity of the task itself. When finer than the period granularity the
	// period is split and resolved once per sub-interval.
	Granularity calendar.Granularity

	ExactDate *time.Time

	// DueMonth (1-12) together with DueDay selects a calendar day; DueDay alone is a
	// bare day of month in the month the period ends in.
	DueMonth int
	DueDay   int

	// ISO weekday, 1 = Monday ... 7 = Sunday
	DueWeekday int

	OffsetType  OffsetType
	OffsetValue int
}

// Validate checks the rule fields are within range
func (r Rule) Validate() error {
	if !r.Granularity.IsValid() {
		return fmt.Errorf("invalid granularity %q", r.Granularity)
	}
	if r.DueMonth < 0 || r.DueMonth > 12 {
		return fmt.Errorf("due month %d out of range", r.DueMonth)
	}
	if r.DueDay < 0 || r.DueDay > 31 {
		return fmt.Errorf("due day %d out of range", r.DueDay)
	}
	if r.DueMonth > 0 && r.DueDay == 0 {
		return fmt.Errorf("due month %d requires a due day", r.DueMonth)
	}
	if r.DueWeekday < 0 || r.DueWeekday > 7 {
		return fmt.Errorf("due weekday %d out of range", r.DueWeekday)
	}
	if r.OffsetType != "" && !r.OffsetType.IsValid() {
		return fmt.Errorf("invalid offset type %q", r.OffsetType)
	}
	return nil
}

// Resolve returns the due date of the rule inside window w.
// The second result is false when the task does not apply to the window.
//
// Exact date, month and day, and weekday rules only match inside the window. Day of
// month and offset rules are anchored on the window end and may land after it, but
// never before its start. A rule with nothing configured falls through to the window end.
func (r Rule) Resolve(w calendar.Window) (time.Time, bool) {
	switch {
	case r.ExactDate != nil:
		d := calendar.Truncate(*r.ExactDate)
		return d, w.Contains(d)

	case r.DueMonth > 0 && r.DueDay > 0:
		month := time.Month(r.DueMonth)
		d := calendar.Clamp(w.Start.Year(), month, r.DueDay)
		if w.Contains(d) {
			return d, true
		}
		if w.End.Year() != w.Start.Year() {
			d = calendar.Clamp(w.End.Year(), month, r.DueDay)
			if w.Contains(d) {
				return d, true
			}
		}
		return time.Time{}, false

	case r.DueWeekday > 0:
		target := time.Weekday(r.DueWeekday % 7)
		ahead := (int(target) - int(w.Start.Weekday()) + 7) % 7
		d := w.Start.AddDate(0, 0, ahead)
		return d, !d.After(w.End)

	case r.DueDay > 0:
		d := calendar.Clamp(w.End.Year(), w.End.Month(), r.DueDay)
		return d, !d.Before(w.Start)

	default:
		d := r.offsetFrom(w.End)
		return d, !d.Before(w.Start)
	}
}

func (r Rule) offsetFrom(end time.Time) time.Time {
	switch r.OffsetType {
	case OffsetWeeks:
		return end.AddDate(0, 0, 7*r.OffsetValue)
	case OffsetMonths:
		return calendar.AddMonths(end, r.OffsetValue)
	default:
		return end.AddDate(0, 0, r.OffsetValue)
	}
}
