package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hray3182/daybook/internal/apperr"
)

// ErrInvalidRule is returned by Parse for malformed encodings.
var ErrInvalidRule = apperr.Validation("invalid recurrence rule")

var weekdayByName = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// Parse decodes a rule encoding:
//
//	DAILY:
//	WEEKLY:<weekday>(,<weekday>)*
//	MONTHLY:<ordinal>:<weekday>(,<weekday>)*
//
// Tokens are case-insensitive. DAILY ignores anything after the colon.
func Parse(input string) (Rule, error) {
	parts := strings.Split(strings.TrimSpace(input), ":")
	freq := strings.ToUpper(strings.TrimSpace(parts[0]))

	switch freq {
	case "DAILY":
		return Daily{}, nil
	case "WEEKLY":
		if len(parts) < 2 {
			return nil, ErrInvalidRule.Wrap(fmt.Errorf("weekly rule %q has no weekdays", input))
		}
		days, err := parseWeekdays(parts[1])
		if err != nil {
			return nil, err
		}
		rule, err := NewWeekly(days)
		if err != nil {
			return nil, err
		}
		return rule, nil
	case "MONTHLY":
		if len(parts) < 3 {
			return nil, ErrInvalidRule.Wrap(fmt.Errorf("monthly rule %q needs an ordinal and weekdays", input))
		}
		ordinal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, ErrInvalidRule.Wrap(fmt.Errorf("ordinal %q is not an integer", parts[1]))
		}
		days, err := parseWeekdays(parts[2])
		if err != nil {
			return nil, err
		}
		rule, err := NewMonthly(ordinal, days)
		if err != nil {
			return nil, err
		}
		return rule, nil
	default:
		return nil, ErrInvalidRule.Wrap(fmt.Errorf("unknown frequency %q", parts[0]))
	}
}

func parseWeekdays(segment string) (WeekdaySet, error) {
	var days WeekdaySet
	for _, token := range strings.Split(segment, ",") {
		name := strings.ToUpper(strings.TrimSpace(token))
		day, ok := weekdayByName[name]
		if !ok {
			return 0, ErrInvalidRule.Wrap(fmt.Errorf("unknown weekday %q", token))
		}
		days |= NewWeekdaySet(day)
	}
	return days, nil
}
