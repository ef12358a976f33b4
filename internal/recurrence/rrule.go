package recurrence

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ToRRule converts rule and its validity window into an RFC 5545 rule whose
// occurrences start at local midnight in loc. Monthly rules become BYDAY with
// an nth prefix (+2TU).
func ToRRule(rule Rule, from, to civil.Date, loc *time.Location) (*rrule.RRule, error) {
	if loc == nil {
		loc = time.UTC
	}
	opt := rrule.ROption{
		Dtstart: from.In(loc),
		Until:   time.Date(to.Year, to.Month, to.Day, 23, 59, 59, 0, loc),
	}

	switch r := rule.(type) {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = byWeekday(r.days, 0)
	case Monthly:
		if r.ordinal < 1 {
			return nil, fmt.Errorf("ordinal %d has no RFC 5545 equivalent", r.ordinal)
		}
		opt.Freq = rrule.MONTHLY
		opt.Byweekday = byWeekday(r.days, r.ordinal)
	default:
		return nil, fmt.Errorf("unsupported rule %T", rule)
	}

	return rrule.NewRRule(opt)
}

func byWeekday(days WeekdaySet, nth int) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, days.Len())
	for _, d := range days.Days() {
		wd := rruleWeekdays[d]
		if nth > 0 {
			wd = wd.Nth(nth)
		}
		out = append(out, wd)
	}
	return out
}

// ToRRuleSet is ToRRule with each skip date added as an EXDATE.
func ToRRuleSet(rule Rule, from, to civil.Date, skip []civil.Date, loc *time.Location) (*rrule.Set, error) {
	rr, err := ToRRule(rule, from, to, loc)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	set := &rrule.Set{}
	set.RRule(rr)
	for _, d := range skip {
		set.ExDate(d.In(loc))
	}
	return set, nil
}
