package calendar

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"

	"github.com/hray3182/daybook/internal/models"
)

// EventSource reads one-off events. Instants are absolute; ranges are
// [start, end).
type EventSource interface {
	// FindConfirmedSpans returns confirmed events overlapping the range.
	FindConfirmedSpans(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduledSpan, error)
	// FindCompletedLabelSpans returns confirmed, completed events of a label
	// starting in the range.
	FindCompletedLabelSpans(ctx context.Context, userID int64, labelID int, start, end time.Time) ([]models.ScheduledSpan, error)
	CountCompletedByLabel(ctx context.Context, userID int64, labelID int, start, end time.Time) (int, error)
}

// RecurringSource returns the user's series whose validity overlaps the
// inclusive date range.
type RecurringSource interface {
	FindWindows(ctx context.Context, userID int64, from, to civil.Date) ([]models.RecurringWindow, error)
}

type LabelSource interface {
	GetByID(ctx context.Context, labelID int) (*models.Label, error)
	ValidateOwnership(ctx context.Context, labelID int, userID int64) error
}

// StatsSource reads precomputed monthly durations. An absent value means no
// aggregate has been stored for the month.
type StatsSource interface {
	GetMonthlyDuration(ctx context.Context, userID int64, labelID int, year int, month time.Month) (mo.Option[int], error)
}

// UserProvider resolves the acting user.
type UserProvider interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}
