package recurrence

import (
	"time"

	"cloud.google.com/go/civil"
)

// Matches reports whether d is an occurrence of rule. A nil rule has no
// occurrences.
func Matches(rule Rule, d civil.Date) bool {
	switch r := rule.(type) {
	case Daily:
		return true
	case Weekly:
		return r.days.Contains(Weekday(d))
	case Monthly:
		return r.days.Contains(Weekday(d)) && WeekdayOrdinal(d) == r.ordinal
	default:
		return false
	}
}

// Weekday returns the day of the week of a calendar date.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// WeekdayOrdinal is the 1-based position of d among the dates of its month
// that share its weekday: 1 for the first Tuesday, 2 for the second, ...
func WeekdayOrdinal(d civil.Date) int {
	return (d.Day-1)/7 + 1
}
