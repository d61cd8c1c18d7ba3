package calendar

import "fmt"

// Granularity is the recurrence unit of an engagement or task
type Granularity string

const (
	GranularityNone       Granularity = "none"
	GranularityDaily      Granularity = "daily"
	GranularityWeekly     Granularity = "weekly"
	GranularityMonthly    Granularity = "monthly"
	GranularityQuarterly  Granularity = "quarterly"
	GranularityHalfYearly Granularity = "half_yearly"
	GranularityYearly     Granularity = "yearly"
)

// rank orders recurring granularities from finest to coarsest; none has no rank
var rank = map[Granularity]int{
	GranularityDaily:      1,
	GranularityWeekly:     2,
	GranularityMonthly:    3,
	GranularityQuarterly:  4,
	GranularityHalfYearly: 5,
	GranularityYearly:     6,
}

// IsValid checks if the granularity is known
func (g Granularity) IsValid() bool {
	if g == GranularityNone {
		return true
	}
	_, ok := rank[g]
	return ok
}

// IsRecurring returns true for every granularity except none
func (g Granularity) IsRecurring() bool {
	_, ok := rank[g]
	return ok
}

// FinerThan reports whether g subdivides other (e.g. monthly is finer than quarterly).
// Non-recurring granularities are never finer than anything.
func (g Granularity) FinerThan(other Granularity) bool {
	a, ok := rank[g]
	if !ok {
		return false
	}
	b, ok := rank[other]
	if !ok {
		return false
	}
	return a < b
}

// String returns the string representation of Granularity
func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity parses a granularity, treating the empty string as none
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return GranularityNone, nil
	}
	g := Granularity(s)
	if !g.IsValid() {
		return "", fmt.Errorf("unknown granularity %q", s)
	}
	return g, nil
}
