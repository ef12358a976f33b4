package handlers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
	"github.com/hray3182/daybook/internal/repository"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		in    string
		year  int
		month time.Month
		ok    bool
	}{
		{"2025-06", 2025, time.June, true},
		{" 2024-2 ", 2024, time.February, true},
		{"2025-13", 2025, 13, true},
		{"2025", 0, 0, false},
		{"june-2025", 0, 0, false},
		{"2025-jun", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			year, month, err := parseYearMonth(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, calendar.ErrInvalidCalendarParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, year)
			assert.Equal(t, tt.month, month)
		})
	}
}

func TestMonthOrCurrent(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)

	year, month, err := monthOrCurrent("", settingsIn("Pacific/Kiritimati"), now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.January, month)

	year, month, err = monthOrCurrent("  ", settingsIn("America/New_York"), now)
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.December, month)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" #12 ", "event")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, in := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(in, "event")
		assert.ErrorIs(t, err, errBadArguments, in)
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		fields []string
		title  string
		label  string
	}{
		{[]string{"Book", "club", "#reading"}, "Book club", "reading"},
		{[]string{"Book", "club"}, "Book club", ""},
		{[]string{"#reading"}, "#reading", ""},
		{[]string{"Run", "#"}, "Run #", ""},
	}

	for _, tt := range tests {
		title, label := splitLabel(tt.fields)
		assert.Equal(t, tt.title, title)
		assert.Equal(t, tt.label, label)
	}
}

func TestParseEventArgs(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	t.Run("with duration and label", func(t *testing.T) {
		draft, err := parseEventArgs("2025-03-30 01:30 90 Night run #sport", berlin)
		require.NoError(t, err)
		assert.True(t, draft.Start.Equal(time.Date(2025, 3, 30, 0, 30, 0, 0, time.UTC)))
		assert.Equal(t, 90, draft.Minutes)
		assert.Equal(t, "Night run", draft.Title)
		assert.Equal(t, "sport", draft.Label)
	})

	t.Run("numeric title without duration", func(t *testing.T) {
		draft, err := parseEventArgs("2025-06-10 18:00 42", berlin)
		require.NoError(t, err)
		assert.Equal(t, 0, draft.Minutes)
		assert.Equal(t, "42", draft.Title)
	})

	for _, in := range []string{"", "2025-06-10 18:00", "10/06/2025 18:00 Dinner", "2025-06-10 18:00 -5 Dinner"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseEventArgs(in, berlin)
			assert.ErrorIs(t, err, errBadArguments)
		})
	}
}

func TestParseRepeatArgs(t *testing.T) {
	series, label, err := parseRepeatArgs("monthly:2:tuesday 2025-06-01 2025-12-31 Book club #reading", testUserID)
	require.NoError(t, err)
	assert.Equal(t, "reading", label)
	assert.Equal(t, &models.RecurringEvent{
		UserID:         testUserID,
		Title:          "Book club",
		RecurrenceRule: "MONTHLY:2:TUESDAY",
		ValidFrom:      civil.Date{Year: 2025, Month: time.June, Day: 1},
		ValidTo:        civil.Date{Year: 2025, Month: time.December, Day: 31},
	}, series)

	_, _, err = parseRepeatArgs("WEEKLY:FUNDAY 2025-06-01 2025-12-31 Party", testUserID)
	assert.ErrorIs(t, err, recurrence.ErrInvalidRule)

	_, _, err = parseRepeatArgs("DAILY: 2025-12-31 2025-06-01 Backwards", testUserID)
	assert.ErrorIs(t, err, errBadArguments)

	_, _, err = parseRepeatArgs("DAILY: 2025-06-01", testUserID)
	assert.ErrorIs(t, err, errBadArguments)
}

func TestSeriesEntry(t *testing.T) {
	series := &models.RecurringEvent{
		RecurringEventID: 5,
		Title:            "Book club",
		RecurrenceRule:   "WEEKLY:TUESDAY",
		ValidFrom:        civil.Date{Year: 2025, Month: time.June, Day: 1},
		ValidTo:          civil.Date{Year: 2025, Month: time.June, Day: 30},
		SkipDates:        []civil.Date{{Year: 2025, Month: time.June, Day: 10}},
	}

	entry := seriesEntry(series, time.UTC)
	assert.Contains(t, entry, "**5.** Book club · `WEEKLY:TUESDAY`\n")
	assert.Contains(t, entry, "Every Tuesday from June 1, 2025 until June 30, 2025")
	assert.Contains(t, entry, "Skipping 2025-06-10")
	assert.Contains(t, entry, "RRULE:FREQ=WEEKLY")
	assert.Contains(t, entry, "EXDATE")

	series.RecurrenceRule = "FORTNIGHTLY:"
	entry = seriesEntry(series, time.UTC)
	assert.Contains(t, entry, "can no longer be read")
	assert.NotContains(t, entry, "RRULE")
}

func TestEventLine(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	end := time.Date(2025, 6, 10, 11, 15, 0, 0, time.UTC)

	event := &models.Event{
		EventID:   3,
		Title:     "Workshop",
		StartTime: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   &end,
		Confirmed: true,
	}
	assert.Equal(t, "**3.** Workshop · Tue Jun 10 18:00-20:15 (2h 15m)", eventLine(event, tokyo))

	event.Completed = true
	assert.Equal(t, "**3.** Workshop · Tue Jun 10 18:00-20:15 (2h 15m) ✅", eventLine(event, tokyo))

	event.Completed, event.Confirmed, event.EndTime = false, false, nil
	assert.Equal(t, "**3.** Workshop · Tue Jun 10 18:00 (tentative)", eventLine(event, tokyo))
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("failed to load label: %w", repository.ErrLabelNotFound)
	assert.Equal(t, "label not found", userMessage(wrapped))
	assert.Equal(t, "bad arguments: expected 2 fields", userMessage(usage("expected %d fields", 2)))
	assert.Equal(t, "plain", userMessage(errors.New("plain")))
}
