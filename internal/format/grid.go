package format

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const gridHeader = "Mo Tu We Th Fr Sa Su"

// MonthGrid draws a Monday-first calendar for the month. Days present in
// marked get a trailing asterisk; dates outside the month are ignored.
func MonthGrid(year int, month time.Month, marked []civil.Date) string {
	set := make(map[int]bool, len(marked))
	for _, d := range marked {
		if d.Year == year && d.Month == month {
			set[d.Day] = true
		}
	}

	first := civil.Date{Year: year, Month: month, Day: 1}
	lead := (int(first.In(time.UTC).Weekday()) + 6) % 7
	days := first.AddMonths(1).DaysSince(first)

	var sb strings.Builder
	sb.WriteString(gridHeader)

	var row strings.Builder
	row.WriteString(strings.Repeat("   ", lead))
	col := lead
	for day := 1; day <= days; day++ {
		mark := " "
		if set[day] {
			mark = "*"
		}
		fmt.Fprintf(&row, "%2d%s", day, mark)
		col++
		if col == 7 || day == days {
			sb.WriteString("\n")
			sb.WriteString(strings.TrimRight(row.String(), " "))
			row.Reset()
			col = 0
		}
	}
	return sb.String()
}

// MonthTitle is e.g. "June 2025".
func MonthTitle(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}

// Minutes renders a duration in minutes as "2h 15m", "45m" or "3h".
func Minutes(total int) string {
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
