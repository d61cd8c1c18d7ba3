package duedate

import (
	"testing"
	"time"

	"github.com/practice/backend/internal/domain/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(start, end time.Time) calendar.Window {
	return calendar.Window{Start: start, End: end}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := calendar.Date(y, m, d)
	return &t
}

func TestRule_Resolve(t *testing.T) {
	jan := window(calendar.Date(2025, time.January, 1), calendar.Date(2025, time.January, 31))
	sep := window(calendar.Date(2025, time.September, 1), calendar.Date(2025, time.September, 30))
	fyApr := window(calendar.Date(2024, time.April, 1), calendar.Date(2025, time.March, 31))

	tests := []struct {
		name    string
		rule    Rule
		window  calendar.Window
		want    time.Time
		matched bool
	}{
		{
			name:    "exact date inside window",
			rule:    Rule{ExactDate: datePtr(2025, time.January, 20)},
			window:  jan,
			want:    calendar.Date(2025, time.January, 20),
			matched: true,
		},
		{
			name:   "exact date outside window does not fall through",
			rule:   Rule{ExactDate: datePtr(2025, time.February, 20), DueDay: 10},
			window: jan,
		},
		{
			name:    "month and day in start year",
			rule:    Rule{DueMonth: 1, DueDay: 15},
			window:  jan,
			want:    calendar.Date(2025, time.January, 15),
			matched: true,
		},
		{
			name:    "month and day retried in end year",
			rule:    Rule{DueMonth: 2, DueDay: 28},
			window:  fyApr,
			want:    calendar.Date(2025, time.February, 28),
			matched: true,
		},
		{
			name:    "month and day clamped",
			rule:    Rule{DueMonth: 2, DueDay: 31},
			window:  fyApr,
			want:    calendar.Date(2025, time.February, 28),
			matched: true,
		},
		{
			name:   "month and day outside window",
			rule:   Rule{DueMonth: 6, DueDay: 15},
			window: jan,
		},
		{
			name:    "weekday first occurrence on or after start",
			rule:    Rule{DueWeekday: 5},
			window:  jan,
			want:    calendar.Date(2025, time.January, 3),
			matched: true,
		},
		{
			name:    "weekday on the start day",
			rule:    Rule{DueWeekday: 3},
			window:  jan,
			want:    calendar.Date(2025, time.January, 1),
			matched: true,
		},
		{
			name:   "weekday after a short window",
			rule:   Rule{DueWeekday: 1},
			window: window(calendar.Date(2025, time.January, 1), calendar.Date(2025, time.January, 3)),
		},
		{
			name:    "bare day of month in end month",
			rule:    Rule{DueDay: 10},
			window:  window(calendar.Date(2025, time.January, 1), calendar.Date(2025, time.March, 31)),
			want:    calendar.Date(2025, time.March, 10),
			matched: true,
		},
		{
			name:    "bare day of month clamped",
			rule:    Rule{DueDay: 31},
			window:  window(calendar.Date(2025, time.February, 1), calendar.Date(2025, time.February, 28)),
			want:    calendar.Date(2025, time.February, 28),
			matched: true,
		},
		{
			name:    "offset days from period end",
			rule:    Rule{OffsetType: OffsetDays, OffsetValue: 10},
			window:  sep,
			want:    calendar.Date(2025, time.October, 10),
			matched: true,
		},
		{
			name:    "offset weeks",
			rule:    Rule{OffsetType: OffsetWeeks, OffsetValue: 2},
			window:  sep,
			want:    calendar.Date(2025, time.October, 14),
			matched: true,
		},
		{
			name:    "offset months",
			rule:    Rule{OffsetType: OffsetMonths, OffsetValue: 1},
			window:  window(calendar.Date(2025, time.January, 1), calendar.Date(2025, time.January, 31)),
			want:    calendar.Date(2025, time.February, 28),
			matched: true,
		},
		{
			name:    "offset zero is the period end",
			rule:    Rule{OffsetType: OffsetDays},
			window:  sep,
			want:    calendar.Date(2025, time.September, 30),
			matched: true,
		},
		{
			name:    "empty rule falls through to the period end",
			rule:    Rule{},
			window:  sep,
			want:    calendar.Date(2025, time.September, 30),
			matched: true,
		},
		{
			name:   "negative offset before start",
			rule:   Rule{OffsetType: OffsetDays, OffsetValue: -40},
			window: sep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.Resolve(tt.window)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRule_Validate(t *testing.T) {
	assert.NoError(t, Rule{DueMonth: 3, DueDay: 31}.Validate())
	assert.NoError(t, Rule{OffsetType: OffsetMonths, OffsetValue: 2}.Validate())
	assert.Error(t, Rule{DueMonth: 13, DueDay: 1}.Validate())
	assert.Error(t, Rule{DueMonth: 3}.Validate())
	assert.Error(t, Rule{DueDay: 32}.Validate())
	assert.Error(t, Rule{DueWeekday: 8}.Validate())
	assert.Error(t, Rule{OffsetType: "years"}.Validate())
	assert.Error(t, Rule{Granularity: "hourly"}.Validate())
}

func TestResolveAll(t *testing.T) {
	t.Run("same granularity yields one occurrence", func(t *testing.T) {
		cal := calendar.Config{Granularity: calendar.GranularityMonthly}
		w := cal.PeriodContaining(calendar.Date(2025, time.February, 14))
		occ := ResolveAll(Rule{Granularity: calendar.GranularityMonthly, DueDay: 10}, cal, w)
		require.Len(t, occ, 1)
		assert.Equal(t, calendar.Date(2025, time.February, 10), occ[0].Due)
		assert.False(t, occ[0].IsSubInterval())
		assert.Equal(t, "Payroll", occ[0].Title("Payroll"))
		assert.Equal(t, 3, occ[0].SortOrder(3))
		assert.Equal(t, w, occ[0].Window)
	})

	t.Run("finer granularity splits the period", func(t *testing.T) {
		cal := calendar.Config{Granularity: calendar.GranularityQuarterly}
		w := cal.PeriodContaining(calendar.Date(2025, time.May, 5))
		occ := ResolveAll(Rule{Granularity: calendar.GranularityMonthly, DueDay: 20}, cal, w)
		require.Len(t, occ, 3)

		assert.Equal(t, calendar.Date(2025, time.April, 20), occ[0].Due)
		assert.Equal(t, calendar.Date(2025, time.May, 20), occ[1].Due)
		assert.Equal(t, calendar.Date(2025, time.June, 20), occ[2].Due)

		assert.Equal(t, "GST return (Apr 2025)", occ[0].Title("GST return"))
		assert.Equal(t, 201, occ[0].SortOrder(2))
		assert.Equal(t, 203, occ[2].SortOrder(2))
		assert.Equal(t, calendar.Date(2025, time.June, 1), occ[2].Window.Start)
	})

	t.Run("sub-intervals without a match are skipped", func(t *testing.T) {
		cal := calendar.Config{Granularity: calendar.GranularityQuarterly}
		w := cal.PeriodContaining(calendar.Date(2025, time.May, 5))
		occ := ResolveAll(Rule{Granularity: calendar.GranularityMonthly, DueMonth: 5, DueDay: 7}, cal, w)
		require.Len(t, occ, 1)
		assert.Equal(t, calendar.Date(2025, time.May, 7), occ[0].Due)
		assert.Equal(t, 2, occ[0].Index)
	})

	t.Run("exact date outside yields nothing", func(t *testing.T) {
		cal := calendar.Config{Granularity: calendar.GranularityMonthly}
		w := cal.PeriodContaining(calendar.Date(2025, time.February, 14))
		assert.Empty(t, ResolveAll(Rule{ExactDate: datePtr(2025, time.March, 3)}, cal, w))
	})

	t.Run("period ending 30 Sep with 10 day offset", func(t *testing.T) {
		cal := calendar.Config{Granularity: calendar.GranularityQuarterly}
		w := cal.PeriodContaining(calendar.Date(2025, time.August, 1))
		occ := ResolveAll(Rule{Granularity: calendar.GranularityQuarterly, OffsetType: OffsetDays, OffsetValue: 10}, cal, w)
		require.Len(t, occ, 1)
		assert.Equal(t, calendar.Date(2025, time.October, 10), occ[0].Due)
	})
}
