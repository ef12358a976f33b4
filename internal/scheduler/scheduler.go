// Package scheduler keeps the precomputed per-label monthly durations in
// label_monthly_stat up to date.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/models"
)

type UserLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
}

type SpanFinder interface {
	FindCompletedSpans(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduledSpan, error)
}

type DurationStore interface {
	UpsertMonthlyDurations(ctx context.Context, userID int64, year int, month time.Month, totals map[int]int) (int, error)
}

// Observer receives the outcome of every per-user refresh.
type Observer interface {
	ObserveRefresh(err error, rows int)
}

type Scheduler struct {
	users    UserLister
	events   SpanFinder
	stats    DurationStore
	observer Observer
	schedule cron.Schedule
	logger   *zap.Logger
	now      func() time.Time
	notifyCh chan struct{}
}

// ParseSchedule parses spec as a standard five-field cron expression and
// rejects one that never fires, such as "0 0 30 2 *".
func ParseSchedule(spec string, now time.Time) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh schedule %q: %w", spec, err)
	}
	if schedule.Next(now).IsZero() {
		return nil, fmt.Errorf("refresh schedule %q never fires", spec)
	}
	return schedule, nil
}

// New parses spec with ParseSchedule.
func New(spec string, users UserLister, events SpanFinder, stats DurationStore, observer Observer, logger *zap.Logger) (*Scheduler, error) {
	schedule, err := ParseSchedule(spec, time.Now())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		users:    users,
		events:   events,
		stats:    stats,
		observer: observer,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		notifyCh: make(chan struct{}, 1),
	}, nil
}

// Notify triggers an immediate refresh. Non-blocking if one is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start refreshes once, then on every schedule tick or Notify until ctx is
// done.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started")
	s.RunOnce(ctx)

	for {
		// A schedule with no next time only runs on Notify.
		var timer *time.Timer
		var tick <-chan time.Time
		if next := s.schedule.Next(s.now()); !next.IsZero() {
			timer = time.NewTimer(time.Until(next))
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			s.logger.Info("scheduler stopped")
			return
		case <-tick:
			s.RunOnce(ctx)
		case <-s.notifyCh:
			stopTimer(timer)
			s.logger.Debug("scheduler triggered by notification")
			s.RunOnce(ctx)
		}
	}
}

func stopTimer(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}

// RunOnce refreshes every user. A failing user is logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return
	}

	now := s.now()
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		rows, err := s.RefreshUser(ctx, userID, now)
		if s.observer != nil {
			s.observer.ObserveRefresh(err, rows)
		}
		if err != nil {
			s.logger.Error("failed to refresh monthly durations", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		s.logger.Debug("refreshed monthly durations", zap.Int64("user_id", userID), zap.Int("rows", rows))
	}
}

// RefreshUser recomputes the user's current and previous local month.
func (s *Scheduler) RefreshUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	loc, err := user.Location()
	if err != nil {
		return 0, fmt.Errorf("user %d has invalid timezone %q: %w", userID, user.Timezone, err)
	}

	localNow := now.In(loc)
	current := calendar.NewMonthWindow(loc, localNow.Year(), localNow.Month())

	total := 0
	for _, window := range []calendar.MonthWindow{current.Previous(), current} {
		spans, err := s.events.FindCompletedSpans(ctx, userID, window.Start, window.End)
		if err != nil {
			return total, fmt.Errorf("failed to find completed events: %w", err)
		}
		rows, err := s.stats.UpsertMonthlyDurations(ctx, userID, window.Year, window.Month, SumMinutesByLabel(spans))
		if err != nil {
			return total, err
		}
		total += rows
	}
	return total, nil
}

// SumMinutesByLabel totals whole minutes per label over confirmed, completed
// spans. Spans without a label or an end, and spans ending before they start,
// contribute nothing.
func SumMinutesByLabel(spans []models.ScheduledSpan) map[int]int {
	totals := make(map[int]int)
	for _, span := range spans {
		if !span.Confirmed || !span.Completed || span.LabelID == nil || span.End == nil {
			continue
		}
		totals[*span.LabelID] += int(span.Duration().Minutes())
	}
	return totals
}
