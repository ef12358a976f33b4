// Package calendar answers month-scoped questions about a user's schedule:
// which local dates have activity, which dates a label was worked on, and the
// per-label totals for a month.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
)

// ErrInvalidCalendarParameter is returned for an out-of-range year or month
// and for a user timezone that does not load.
var ErrInvalidCalendarParameter = apperr.Validation("invalid calendar parameter")

type Service struct {
	users     UserProvider
	events    EventSource
	recurring RecurringSource
	labels    LabelSource
	stats     StatsSource
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	users UserProvider,
	events EventSource,
	recurring RecurringSource,
	labels LabelSource,
	stats StatsSource,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:     users,
		events:    events,
		recurring: recurring,
		labels:    labels,
		stats:     stats,
		logger:    logger,
		now:       time.Now,
	}
}

// DatesWithEvents lists the local dates of the month that carry a confirmed
// one-off event or a recurring occurrence. A one-off event marks every local
// date from its start through its end. Absent year or month default to the
// user's current local year or month.
func (s *Service) DatesWithEvents(ctx context.Context, year, month mo.Option[int]) ([]civil.Date, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	user, window, err := s.resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}

	dates := make(map[civil.Date]struct{})

	spans, err := s.events.FindConfirmedSpans(ctx, user.UserID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to find confirmed events: %w", err)
	}
	for _, span := range spans {
		if !span.Overlaps(window.Start, window.End) {
			continue
		}
		start := window.LocalDate(span.Start)
		end := start
		if span.End != nil {
			if e := window.LocalDate(*span.End); e.After(start) {
				end = e
			}
		}
		for d := start; !d.After(end); d = d.AddDays(1) {
			dates[d] = struct{}{}
		}
	}

	windows, err := s.recurring.FindWindows(ctx, user.UserID, window.FirstDay, window.LastDay)
	if err != nil {
		return nil, fmt.Errorf("failed to find recurring events: %w", err)
	}
	for _, w := range windows {
		from, to := clip(window.FirstDay, window.LastDay, w.ValidFrom, w.ValidTo)
		for _, d := range recurrence.Expand(w.Rule, from, to, w.SkipDates) {
			dates[d] = struct{}{}
		}
	}

	s.logger.Debug("computed active dates",
		zap.Int64("user_id", user.UserID),
		zap.Int("year", window.Year),
		zap.Int("month", int(window.Month)),
		zap.Int("one_off", len(spans)),
		zap.Int("recurring", len(windows)),
		zap.Int("dates", len(dates)),
	)

	return sortedDates(dates), nil
}

// DatesForLabel lists the local dates on which completed events of the label
// started. Each event counts on its start date only.
func (s *Service) DatesForLabel(ctx context.Context, labelID int, year, month mo.Option[int]) ([]civil.Date, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	user, window, err := s.resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedLabel(ctx, labelID, user.UserID); err != nil {
		return nil, err
	}

	spans, err := s.events.FindCompletedLabelSpans(ctx, user.UserID, labelID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to find completed events: %w", err)
	}

	dates := make(map[civil.Date]struct{}, len(spans))
	for _, span := range spans {
		dates[window.LocalDate(span.Start)] = struct{}{}
	}
	return sortedDates(dates), nil
}

// MonthlyStats combines the stored duration aggregate with a live count of
// completed events. A month without an aggregate reports zero minutes.
func (s *Service) MonthlyStats(ctx context.Context, labelID int, year, month mo.Option[int]) (*models.LabelMonthStats, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	user, window, err := s.resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	label, err := s.ownedLabel(ctx, labelID, user.UserID)
	if err != nil {
		return nil, err
	}

	duration, err := s.stats.GetMonthlyDuration(ctx, user.UserID, labelID, window.Year, window.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly duration: %w", err)
	}
	count, err := s.events.CountCompletedByLabel(ctx, user.UserID, labelID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed events: %w", err)
	}

	return &models.LabelMonthStats{
		LabelID:              label.LabelID,
		LabelName:            label.LabelName,
		Year:                 window.Year,
		Month:                int(window.Month),
		TotalEvents:          count,
		TotalDurationMinutes: duration.OrElse(0),
	}, nil
}

// resolve loads the acting user and the month window in their timezone.
func (s *Service) resolve(ctx context.Context, year, month mo.Option[int]) (*models.User, MonthWindow, error) {
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, MonthWindow{}, err
	}
	loc, err := user.Location()
	if err != nil {
		return nil, MonthWindow{}, ErrInvalidCalendarParameter.Wrap(fmt.Errorf("timezone %q: %w", user.Timezone, err))
	}

	localNow := s.now().In(loc)
	y := year.OrElse(localNow.Year())
	m := month.OrElse(int(localNow.Month()))

	return user, NewMonthWindow(loc, y, time.Month(m)), nil
}

func (s *Service) ownedLabel(ctx context.Context, labelID int, userID int64) (*models.Label, error) {
	label, err := s.labels.GetByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if err := s.labels.ValidateOwnership(ctx, labelID, userID); err != nil {
		return nil, err
	}
	return label, nil
}

func validateMonth(year, month mo.Option[int]) error {
	if m, ok := month.Get(); ok && (m < 1 || m > 12) {
		return ErrInvalidCalendarParameter.Wrap(fmt.Errorf("month %d is outside 1..12", m))
	}
	if y, ok := year.Get(); ok && (y < 1 || y > 9999) {
		return ErrInvalidCalendarParameter.Wrap(fmt.Errorf("year %d is outside 1..9999", y))
	}
	return nil
}

// clip intersects two inclusive date ranges. The result is empty (from after
// to) when they do not overlap.
func clip(aFrom, aTo, bFrom, bTo civil.Date) (civil.Date, civil.Date) {
	from, to := aFrom, aTo
	if bFrom.After(from) {
		from = bFrom
	}
	if bTo.Before(to) {
		to = bTo
	}
	return from, to
}

func sortedDates(set map[civil.Date]struct{}) []civil.Date {
	dates := make([]civil.Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
