package recurrence

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const summaryDateLayout = "January 2, 2006"

var ordinalWords = map[int]string{
	1: "first",
	2: "second",
	3: "third",
	4: "fourth",
	5: "fifth",
}

// Summarize renders rule and its validity window as an English sentence, e.g.
// "Every second Tuesday of the month from June 1, 2025 until December 31, 2025".
func Summarize(rule Rule, from, to civil.Date) string {
	window := fmt.Sprintf("from %s until %s", formatDate(from), formatDate(to))

	switch r := rule.(type) {
	case Daily:
		return "Every day " + window
	case Weekly:
		return fmt.Sprintf("Every %s %s", joinWeekdays(r.days), window)
	case Monthly:
		return fmt.Sprintf("Every %s %s of the month %s", OrdinalWord(r.ordinal), joinWeekdays(r.days), window)
	default:
		return ""
	}
}

// OrdinalWord spells 1..5 as words and falls back to "6th", "21st", ...
func OrdinalWord(n int) string {
	if w, ok := ordinalWords[n]; ok {
		return w
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// joinWeekdays gives "Monday", "Monday and Friday" or
// "Monday, Wednesday and Friday". An empty set yields "".
func joinWeekdays(days WeekdaySet) string {
	list := days.Days()
	names := make([]string, len(list))
	for i, d := range list {
		names[i] = d.String()
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func formatDate(d civil.Date) string {
	return d.In(time.UTC).Format(summaryDateLayout)
}
