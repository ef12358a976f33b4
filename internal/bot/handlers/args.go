package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/models"
)

var errBadArguments = apperr.Validation("bad arguments")

func usage(msg string, args ...any) error {
	return errBadArguments.Wrap(fmt.Errorf(msg, args...))
}

// parseYearMonth reads "YYYY-MM". Range checks are left to the calendar
// service so both surfaces reject the same inputs.
func parseYearMonth(s string) (int, time.Month, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, calendar.ErrInvalidCalendarParameter.Wrap(fmt.Errorf("expected YYYY-MM, got %q", s))
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, calendar.ErrInvalidCalendarParameter.Wrap(fmt.Errorf("year %q is not a number", y))
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, calendar.ErrInvalidCalendarParameter.Wrap(fmt.Errorf("month %q is not a number", m))
	}
	return year, time.Month(month), nil
}

// monthOrCurrent parses an optional "YYYY-MM", defaulting to the month it
// currently is for the user.
func monthOrCurrent(arg string, settings *models.UserSettings, now time.Time) (int, time.Month, error) {
	if strings.TrimSpace(arg) == "" {
		local := settings.LocalNow(now)
		return local.Year(), local.Month(), nil
	}
	return parseYearMonth(arg)
}

func parseID(s, what string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, usage("%s id %q is not a positive number", what, s)
	}
	return id, nil
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, usage("expected a YYYY-MM-DD date, got %q", s)
	}
	return d, nil
}

// splitLabel pulls a trailing "#name" token off fields and returns the rest
// joined as the title.
func splitLabel(fields []string) (title, label string) {
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "#") && len(fields[n-1]) > 1 {
		label = fields[n-1][1:]
		fields = fields[:n-1]
	}
	return strings.Join(fields, " "), label
}
