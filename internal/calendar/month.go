package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// MonthWindow is one calendar month of a timezone expressed as absolute
// instants. Start is local midnight of the 1st; End is 23:59 local on the last
// day. Queries treat the window as [Start, End).
type MonthWindow struct {
	Location *time.Location
	Year     int
	Month    time.Month
	Start    time.Time
	End      time.Time
	FirstDay civil.Date
	LastDay  civil.Date
}

func NewMonthWindow(loc *time.Location, year int, month time.Month) MonthWindow {
	if loc == nil {
		loc = time.UTC
	}
	lastDay := daysIn(year, month)

	return MonthWindow{
		Location: loc,
		Year:     year,
		Month:    month,
		Start:    time.Date(year, month, 1, 0, 0, 0, 0, loc).UTC(),
		End:      time.Date(year, month, lastDay, 23, 59, 0, 0, loc).UTC(),
		FirstDay: civil.Date{Year: year, Month: month, Day: 1},
		LastDay:  civil.Date{Year: year, Month: month, Day: lastDay},
	}
}

// LocalDate converts an instant to a calendar date in the window's timezone.
func (w MonthWindow) LocalDate(t time.Time) civil.Date {
	return civil.DateOf(t.In(w.Location))
}

// Previous is the window for the month before w in the same timezone.
func (w MonthWindow) Previous() MonthWindow {
	first := time.Date(w.Year, w.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return NewMonthWindow(w.Location, first.Year(), first.Month())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
