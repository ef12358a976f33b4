package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/identity"
	"github.com/hray3182/daybook/internal/metrics"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) DatesWithEvents(ctx context.Context, year, month mo.Option[int]) ([]civil.Date, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]civil.Date), args.Error(1)
}

func (m *mockCalendar) DatesForLabel(ctx context.Context, labelID int, year, month mo.Option[int]) ([]civil.Date, error) {
	args := m.Called(ctx, labelID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]civil.Date), args.Error(1)
}

func (m *mockCalendar) MonthlyStats(ctx context.Context, labelID int, year, month mo.Option[int]) (*models.LabelMonthStats, error) {
	args := m.Called(ctx, labelID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LabelMonthStats), args.Error(1)
}

// asUser matches a context carrying the given user id.
func asUser(id int64) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, err := identity.UserID(ctx)
		return err == nil && got == id
	})
}

func do(t *testing.T, h http.Handler, target string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	srv := New(&mockCalendar{}, nil, nil)

	rec := do(t, srv.Routes(), "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDates(t *testing.T) {
	cal := &mockCalendar{}
	cal.On("DatesWithEvents", asUser(42), mo.Some(2025), mo.Some(6)).
		Return([]civil.Date{{Year: 2025, Month: 5, Day: 31}, {Year: 2025, Month: 6, Day: 10}}, nil)
	srv := New(cal, nil, nil)

	rec := do(t, srv.Routes(), "/api/calendar/dates?year=2025&month=6", "42")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dates":["2025-05-31","2025-06-10"]}`, rec.Body.String())
	cal.AssertExpectations(t)
}

func TestDates_DefaultsPassThroughAsAbsent(t *testing.T) {
	cal := &mockCalendar{}
	cal.On("DatesWithEvents", asUser(7), mo.None[int](), mo.None[int]()).Return([]civil.Date{}, nil)
	srv := New(cal, nil, nil)

	rec := do(t, srv.Routes(), "/api/calendar/dates", "7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dates":[]}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid month", calendar.ErrInvalidCalendarParameter, http.StatusBadRequest, "invalid calendar parameter"},
		{"no user", identity.ErrNoUser, http.StatusUnauthorized, "no user in context"},
		{"label missing", repository.ErrLabelNotFound, http.StatusNotFound, "label not found"},
		{"label not owned", repository.ErrLabelNotOwned, http.StatusForbidden, "label belongs to another user"},
		{"storage failure", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := &mockCalendar{}
			cal.On("DatesForLabel", mock.Anything, 3, mock.Anything, mock.Anything).Return(nil, tt.err)
			srv := New(cal, nil, nil)

			rec := do(t, srv.Routes(), "/api/labels/3/dates?month=6", "42")

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.Contains(t, body["error"], tt.wantBody)
			assert.NotContains(t, body["error"], "connection refused")
		})
	}
}

func TestBadQueryParameters(t *testing.T) {
	srv := New(&mockCalendar{}, nil, nil)

	for _, target := range []string{
		"/api/calendar/dates?month=june",
		"/api/calendar/dates?year=twenty",
		"/api/labels/abc/dates",
		"/api/labels/0/stats",
	} {
		rec := do(t, srv.Routes(), target, "42")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestLabelStats(t *testing.T) {
	cal := &mockCalendar{}
	cal.On("MonthlyStats", asUser(42), 3, mo.Some(2025), mo.Some(3)).Return(&models.LabelMonthStats{
		LabelID: 3, LabelName: "Reading", Year: 2025, Month: 3, TotalEvents: 4, TotalDurationMinutes: 240,
	}, nil)
	srv := New(cal, nil, nil)

	rec := do(t, srv.Routes(), "/api/labels/3/stats?year=2025&month=3", "42")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"label_id":3,"label_name":"Reading","year":2025,"month":3,"total_events":4,"total_duration_minutes":240}`, rec.Body.String())
}

func TestRuleSummary(t *testing.T) {
	srv := New(&mockCalendar{}, nil, nil)

	rec := do(t, srv.Routes(), "/api/rules/summary?rule=monthly:2:tuesday&from=2025-06-01&to=2025-07-31", "42")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ruleSummaryResponse](t, rec)
	assert.Equal(t, "MONTHLY:2:TUESDAY", resp.Rule)
	assert.Equal(t, "Every second Tuesday of the month from June 1, 2025 until July 31, 2025", resp.Summary)
	assert.Equal(t, []civil.Date{{Year: 2025, Month: 6, Day: 10}, {Year: 2025, Month: 7, Day: 8}}, resp.Occurrences)
	assert.True(t, strings.Contains(resp.RRule, "BYDAY=+2TU"), resp.RRule)
}

func TestRuleSummary_Invalid(t *testing.T) {
	srv := New(&mockCalendar{}, nil, nil)

	for _, target := range []string{
		"/api/rules/summary?rule=YEARLY:1&from=2025-06-01&to=2025-07-31",
		"/api/rules/summary?rule=DAILY:&from=June&to=2025-07-31",
		"/api/rules/summary?rule=DAILY:&from=2025-06-01&to=2025-05-01",
		"/api/rules/summary?rule=DAILY:&from=2000-01-01&to=2025-01-01",
	} {
		rec := do(t, srv.Routes(), target, "42")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	m := metrics.New()
	cal := &mockCalendar{}
	cal.On("DatesForLabel", mock.Anything, 9, mock.Anything, mock.Anything).Return([]civil.Date{}, nil)
	srv := New(cal, m, nil)
	h := srv.Routes()

	do(t, h, "/api/labels/9/dates", "42")
	rec := do(t, h, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `daybook_http_requests_total{route="/api/labels/{labelID}/dates",status="200"} 1`)
}
