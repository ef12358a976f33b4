package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/daybook/internal/ai"
	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
	"github.com/hray3182/daybook/internal/repository"
)

const (
	testChatID = int64(42)
	testUserID = int64(7)
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) DatesWithEvents(ctx context.Context, year, month mo.Option[int]) ([]civil.Date, error) {
	args := m.Called(ctx, year, month)
	dates, _ := args.Get(0).([]civil.Date)
	return dates, args.Error(1)
}

func (m *mockCalendar) DatesForLabel(ctx context.Context, labelID int, year, month mo.Option[int]) ([]civil.Date, error) {
	args := m.Called(ctx, labelID, year, month)
	dates, _ := args.Get(0).([]civil.Date)
	return dates, args.Error(1)
}

func (m *mockCalendar) MonthlyStats(ctx context.Context, labelID int, year, month mo.Option[int]) (*models.LabelMonthStats, error) {
	args := m.Called(ctx, labelID, year, month)
	stats, _ := args.Get(0).(*models.LabelMonthStats)
	return stats, args.Error(1)
}

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) SuggestRule(ctx context.Context, text string) (string, *ai.Suggestion, error) {
	args := m.Called(ctx, text)
	suggestion, _ := args.Get(1).(*ai.Suggestion)
	return args.String(0), suggestion, args.Error(2)
}

type fixture struct {
	h        *Handlers
	sender   *fakeSender
	calendar *mockCalendar
}

func newFixture(t *testing.T, suggester RuleSuggester, now time.Time) *fixture {
	t.Helper()
	sender := &fakeSender{}
	cal := &mockCalendar{}
	h := New(sender, &Repositories{}, cal, suggester, nil, nil)
	h.now = func() time.Time { return now }
	t.Cleanup(func() { cal.AssertExpectations(t) })
	return &fixture{h: h, sender: sender, calendar: cal}
}

func command(text string) *tgbotapi.Message {
	name := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: testChatID},
		From:     &tgbotapi.User{ID: testUserID, FirstName: "Sam"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func settingsIn(zone string) *models.UserSettings {
	return models.NewDefaultUserSettings(testUserID, zone)
}

func hasEntity(msg tgbotapi.MessageConfig, kind string) bool {
	for _, e := range msg.Entities {
		if e.Type == kind {
			return true
		}
	}
	return false
}

func TestHandleMonth_DefaultsToUsersLocalMonth(t *testing.T) {
	// 16:00 UTC on June 30th is already July 1st in Tokyo.
	f := newFixture(t, nil, time.Date(2025, 6, 30, 16, 0, 0, 0, time.UTC))
	f.calendar.On("DatesWithEvents", mock.Anything, mo.Some(2025), mo.Some(7)).
		Return([]civil.Date{{Year: 2025, Month: time.July, Day: 4}}, nil).Once()

	f.h.handleMonth(context.Background(), command("/month"), settingsIn("Asia/Tokyo"))

	reply := f.sender.last(t)
	assert.Equal(t, testChatID, reply.ChatID)
	assert.True(t, strings.HasPrefix(reply.Text, "📅 July 2025\n"))
	assert.Contains(t, reply.Text, " 4*")
	assert.True(t, strings.HasSuffix(reply.Text, "1 day with events"))
	assert.True(t, hasEntity(reply, "bold"))
	assert.True(t, hasEntity(reply, "pre"))
}

func TestHandleMonth_ExplicitMonth(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	f.calendar.On("DatesWithEvents", mock.Anything, mo.Some(2025), mo.Some(2)).
		Return([]civil.Date{}, nil).Once()

	f.h.handleMonth(context.Background(), command("/month 2025-02"), settingsIn("UTC"))

	assert.Equal(t, "📅 February 2025\nNothing scheduled", f.sender.last(t).Text)
}

func TestHandleMonth_SpanFromPreviousMonthIsNotCounted(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	f.calendar.On("DatesWithEvents", mock.Anything, mo.Some(2025), mo.Some(6)).
		Return([]civil.Date{
			{Year: 2025, Month: time.May, Day: 31},
			{Year: 2025, Month: time.June, Day: 1},
			{Year: 2025, Month: time.June, Day: 10},
		}, nil).Once()

	f.h.handleMonth(context.Background(), command("/month 2025-06"), settingsIn("UTC"))

	assert.True(t, strings.HasSuffix(f.sender.last(t).Text, "2 days with events"))
}

func TestHandleMonth_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		prepare func(cal *mockCalendar)
		want    string
	}{
		{
			name: "unparseable month never reaches the service",
			text: "/month june",
			want: "⚠️ invalid calendar parameter",
		},
		{
			name: "service rejects the month",
			text: "/month 2025-13",
			prepare: func(cal *mockCalendar) {
				cal.On("DatesWithEvents", mock.Anything, mo.Some(2025), mo.Some(13)).
					Return(nil, calendar.ErrInvalidCalendarParameter.Wrap(errors.New("month 13 is out of range"))).Once()
			},
			want: "⚠️ invalid calendar parameter: month 13 is out of range",
		},
		{
			name: "storage failure is not shown",
			text: "/month 2025-06",
			prepare: func(cal *mockCalendar) {
				cal.On("DatesWithEvents", mock.Anything, mo.Some(2025), mo.Some(6)).
					Return(nil, errors.New("connection refused")).Once()
			},
			want: "Something went wrong, please try again later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
			if tt.prepare != nil {
				tt.prepare(f.calendar)
			}

			f.h.handleMonth(context.Background(), command(tt.text), settingsIn("UTC"))

			assert.True(t, strings.HasPrefix(f.sender.last(t).Text, tt.want), f.sender.last(t).Text)
		})
	}
}

func TestHandleLabelDates(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	f.calendar.On("DatesForLabel", mock.Anything, 3, mo.Some(2025), mo.Some(6)).
		Return([]civil.Date{{Year: 2025, Month: time.June, Day: 2}}, nil).Once()

	f.h.handleLabelDates(context.Background(), command("/labeldates 3"), settingsIn("UTC"))

	reply := f.sender.last(t)
	assert.True(t, strings.HasPrefix(reply.Text, "🏷 Label #3 · June 2025\n"))
	assert.Contains(t, reply.Text, " 2*")
}

func TestHandleLabelDates_BadArguments(t *testing.T) {
	for _, text := range []string{"/labeldates", "/labeldates x", "/labeldates 3 2025-06 extra"} {
		t.Run(text, func(t *testing.T) {
			f := newFixture(t, nil, time.Now())
			f.h.handleLabelDates(context.Background(), command(text), settingsIn("UTC"))
			assert.True(t, strings.HasPrefix(f.sender.last(t).Text, "⚠️ bad arguments"))
		})
	}
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	f.calendar.On("MonthlyStats", mock.Anything, 3, mo.Some(2025), mo.Some(3)).
		Return(&models.LabelMonthStats{
			LabelID:              3,
			LabelName:            "Reading",
			Year:                 2025,
			Month:                3,
			TotalEvents:          4,
			TotalDurationMinutes: 135,
		}, nil).Once()

	f.h.handleStats(context.Background(), command("/stats 3 2025-03"), settingsIn("Europe/Berlin"))

	assert.Equal(t, "🏷 Reading · March 2025\nCompleted events: 4\nTotal time: 2h 15m", f.sender.last(t).Text)
}

func TestHandleStats_LabelErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{repository.ErrLabelNotOwned, "🚫 label belongs to another user"},
		{repository.ErrLabelNotFound, "🔍 label not found"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := newFixture(t, nil, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
			f.calendar.On("MonthlyStats", mock.Anything, 9, mo.Some(2025), mo.Some(6)).
				Return(nil, tt.err).Once()

			f.h.handleStats(context.Background(), command("/stats 9"), settingsIn("UTC"))

			assert.Equal(t, tt.want, f.sender.last(t).Text)
		})
	}
}

func TestHandleRule_Encoding(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	f.h.handleRule(context.Background(), command("/rule monthly:2:tuesday"), settingsIn("UTC"))

	reply := f.sender.last(t)
	assert.Equal(t, "🔁 MONTHLY:2:TUESDAY\n"+
		"Every second Tuesday of the month from June 1, 2025 until May 31, 2026\n\n"+
		"Next: Tue Jun 10, Tue Jul 8, Tue Aug 12, Tue Sep 9, Tue Oct 14", reply.Text)
	assert.True(t, hasEntity(reply, "code"))
}

func TestHandleRule_UnreachableOrdinal(t *testing.T) {
	f := newFixture(t, nil, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	f.h.handleRule(context.Background(), command("/rule MONTHLY:6:FRIDAY"), settingsIn("UTC"))

	assert.True(t, strings.HasSuffix(f.sender.last(t).Text, "No occurrences in the next year"))
}

func TestHandleRule_InvalidWithoutAI(t *testing.T) {
	f := newFixture(t, nil, time.Now())

	f.h.handleRule(context.Background(), command("/rule sometimes"), settingsIn("UTC"))

	assert.Equal(t, `⚠️ invalid recurrence rule: unknown frequency "sometimes"`, f.sender.last(t).Text)
}

func TestHandleRule_AIFallback(t *testing.T) {
	t.Run("suggestion is parsed and explained", func(t *testing.T) {
		suggester := &mockSuggester{}
		suggester.On("SuggestRule", mock.Anything, "mondays and thursdays").
			Return("WEEKLY:MONDAY,THURSDAY", &ai.Suggestion{Rule: "WEEKLY:MONDAY,THURSDAY", Explanation: "Every Monday and Thursday"}, nil).Once()
		f := newFixture(t, suggester, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

		f.h.handleRule(context.Background(), command("/rule mondays and thursdays"), settingsIn("UTC"))

		text := f.sender.last(t).Text
		assert.True(t, strings.HasPrefix(text, "🔁 WEEKLY:MONDAY,THURSDAY\n"))
		assert.Contains(t, text, "Next: Mon Jun 2, Thu Jun 5, Mon Jun 9, Thu Jun 12, Mon Jun 16")
		assert.True(t, strings.HasSuffix(text, "💡 Every Monday and Thursday"))
		suggester.AssertExpectations(t)
	})

	t.Run("declined description shows the explanation", func(t *testing.T) {
		suggester := &mockSuggester{}
		suggester.On("SuggestRule", mock.Anything, "every other week").
			Return("", &ai.Suggestion{Explanation: "Alternate weeks cannot be expressed"}, recurrence.ErrInvalidRule).Once()
		f := newFixture(t, suggester, time.Now())

		f.h.handleRule(context.Background(), command("/rule every other week"), settingsIn("UTC"))

		assert.Equal(t, "🤔 Alternate weeks cannot be expressed", f.sender.last(t).Text)
	})

	t.Run("transport failure falls back to the parse error", func(t *testing.T) {
		suggester := &mockSuggester{}
		suggester.On("SuggestRule", mock.Anything, "someday").
			Return("", nil, errors.New("timeout")).Once()
		f := newFixture(t, suggester, time.Now())

		f.h.handleRule(context.Background(), command("/rule someday"), settingsIn("UTC"))

		assert.Equal(t, `⚠️ invalid recurrence rule: unknown frequency "someday"`, f.sender.last(t).Text)
	})
}

func TestHandleRule_Usage(t *testing.T) {
	f := newFixture(t, nil, time.Now())

	f.h.handleRule(context.Background(), command("/rule"), settingsIn("UTC"))

	assert.True(t, strings.HasPrefix(f.sender.last(t).Text, "Usage: /rule"))
}

func TestHandleHelp_ListsEveryCommand(t *testing.T) {
	f := newFixture(t, nil, time.Now())

	f.h.handleHelp(command("/help"))

	text := f.sender.last(t).Text
	for _, cmd := range []string{"/month", "/tz", "/event", "/events", "/done", "/confirm", "/tentative",
		"/rmevent", "/rule", "/repeat", "/series", "/skip", "/rmseries", "/labels", "/label", "/rmlabel",
		"/labeldates", "/stats"} {
		assert.Contains(t, text, cmd+" ")
	}
}
