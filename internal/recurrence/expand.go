package recurrence

import (
	"cloud.google.com/go/civil"
)

// DateSet is a set of calendar dates, used for skipped occurrences.
type DateSet map[civil.Date]struct{}

func NewDateSet(dates ...civil.Date) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Contains is safe on a nil set.
func (s DateSet) Contains(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

// Expand lists the occurrences of rule in [start, end], ascending, leaving out
// any date in skip. It returns nil for a nil rule or an empty range.
func Expand(rule Rule, start, end civil.Date, skip DateSet) []civil.Date {
	if rule == nil || start.After(end) {
		return nil
	}

	var dates []civil.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if Matches(rule, d) && !skip.Contains(d) {
			dates = append(dates, d)
		}
	}
	return dates
}
