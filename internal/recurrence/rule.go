// Package recurrence implements the recurrence-rule grammar used by recurring
// events: parsing the canonical encoding, deciding whether a calendar date is
// an occurrence, expanding a date range, and rendering a rule as prose.
//
// Rules are immutable values. Every date-level decision goes through Matches;
// Expand is a filter over Matches and never re-implements it.
package recurrence

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Frequency is the recurrence period of a rule.
type Frequency int

const (
	FreqDaily Frequency = iota + 1
	FreqWeekly
	FreqMonthly
)

func (f Frequency) String() string {
	switch f {
	case FreqDaily:
		return "DAILY"
	case FreqWeekly:
		return "WEEKLY"
	case FreqMonthly:
		return "MONTHLY"
	default:
		return "UNKNOWN"
	}
}

// weekOrder is the canonical weekday order, Monday first.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdaySet is an immutable set of weekdays.
type WeekdaySet uint8

// AllWeekdays contains every day of the week.
const AllWeekdays WeekdaySet = 1<<7 - 1

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Len() int {
	n := 0
	for _, d := range weekOrder {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

func (s WeekdaySet) IsEmpty() bool {
	return s&AllWeekdays == 0
}

// Days lists the members Monday through Sunday.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for _, d := range weekOrder {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) encode() string {
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, strings.ToUpper(d.String()))
	}
	return strings.Join(names, ",")
}

// Rule is a parsed recurrence rule: one of Daily, Weekly or Monthly.
type Rule interface {
	Frequency() Frequency
	// Days is the set of weekdays the rule can fall on.
	Days() WeekdaySet
	// Ordinal is the nth-weekday position of a monthly rule.
	Ordinal() (int, bool)
	// String returns the canonical encoding.
	String() string

	isRule()
}

// Daily occurs on every date.
type Daily struct{}

func (Daily) Frequency() Frequency { return FreqDaily }
func (Daily) Days() WeekdaySet { return AllWeekdays }
func (Daily) Ordinal() (int, bool) { return 0, false }
func (Daily) String() string { return "DAILY:" }
func (Daily) isRule() {}

// Weekly occurs on each selected weekday.
type Weekly struct {
	days WeekdaySet
}

var errEmptyWeekdays = errors.New("at least one weekday is required")

func NewWeekly(days WeekdaySet) (Weekly, error) {
	if days.IsEmpty() {
		return Weekly{}, ErrInvalidRule.Wrap(errEmptyWeekdays)
	}
	return Weekly{days: days}, nil
}

func (w Weekly) Frequency() Frequency { return FreqWeekly }
func (w Weekly) Days() WeekdaySet { return w.days }
func (w Weekly) Ordinal() (int, bool) { return 0, false }
func (w Weekly) String() string { return "WEEKLY:" + w.days.encode() }
func (Weekly) isRule() {}

// Monthly occurs on the ordinal-th instance of each selected weekday in a
// month, e.g. the 2nd Tuesday.
type Monthly struct {
	days    WeekdaySet
	ordinal int
}

// NewMonthly does not bound the ordinal; an ordinal a month cannot reach
// simply never matches.
func NewMonthly(ordinal int, days WeekdaySet) (Monthly, error) {
	if days.IsEmpty() {
		return Monthly{}, ErrInvalidRule.Wrap(errEmptyWeekdays)
	}
	return Monthly{days: days, ordinal: ordinal}, nil
}

func (m Monthly) Frequency() Frequency { return FreqMonthly }
func (m Monthly) Days() WeekdaySet { return m.days }
func (m Monthly) Ordinal() (int, bool) { return m.ordinal, true }
func (m Monthly) String() string {
	return "MONTHLY:" + strconv.Itoa(m.ordinal) + ":" + m.days.encode()
}
func (Monthly) isRule() {}
