package duedate

import (
	"fmt"
	"time"

	"github.com/practice/backend/internal/domain/calendar"
)

// Occurrence is one resolved task instance inside a period
type Occurrence struct {
	Window calendar.Window
	Due    time.Time

	// Label and Index are set when the period was split into sub-intervals;
	// Index is the 1-based position of the sub-interval inside the period.
	Label string
	Index int
}

// IsSubInterval returns true if the occurrence covers only part of its period
func (o Occurrence) IsSubInterval() bool {
	return o.Index > 0
}

// Title returns the task title for this occurrence
func (o Occurrence) Title(base string) string {
	if !o.IsSubInterval() {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, o.Label)
}

// SortOrder keeps sub-interval tasks in chronological order under their template
func (o Occurrence) SortOrder(base int) int {
	if !o.IsSubInterval() {
		return base
	}
	return base*100 + o.Index
}

// ResolveAll resolves the rule for a period described by cal and w. When the rule's own
// granularity is finer than the period's, one occurrence is returned per matching
// sub-interval; otherwise at most one occurrence for the whole period.
func ResolveAll(r Rule, cal calendar.Config, w calendar.Window) []Occurrence {
	if !r.Granularity.FinerThan(cal.Granularity) {
		due, ok := r.Resolve(w)
		if !ok {
			return nil
		}
		return []Occurrence{{Window: w, Due: due}}
	}

	var out []Occurrence
	for i, part := range cal.Split(w, r.Granularity) {
		due, ok := r.Resolve(part)
		if !ok {
			continue
		}
		out = append(out, Occurrence{
			Window: part,
			Due:    due,
			Label:  part.Name,
			Index:  i + 1,
		})
	}
	return out
}
