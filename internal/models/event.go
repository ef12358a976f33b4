package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/recurrence"
)

// ErrInvalidValidityWindow is returned for a series whose valid_to precedes
// its valid_from.
var ErrInvalidValidityWindow = apperr.Validation("invalid validity window")

// Event is a one-off scheduled item.
type Event struct {
	EventID     int        `json:"event_id"`
	UserID      int64      `json:"user_id"`
	LabelID     *int       `json:"label_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Confirmed   bool       `json:"confirmed"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Span returns the event's scheduling footprint.
func (e *Event) Span() ScheduledSpan {
	return ScheduledSpan{
		OwnerID:   e.UserID,
		LabelID:   e.LabelID,
		Start:     e.StartTime,
		End:       e.EndTime,
		Confirmed: e.Confirmed,
		Completed: e.Completed,
	}
}

// ScheduledSpan is a one-off occupied period in absolute time. End is nil for
// point events.
type ScheduledSpan struct {
	OwnerID   int64
	LabelID   *int
	Start     time.Time
	End       *time.Time
	Confirmed bool
	Completed bool
}

// Duration is zero for point events and for an end before the start.
func (s ScheduledSpan) Duration() time.Duration {
	if s.End == nil || s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Overlaps reports whether the span touches the half-open range [start, end).
// A span ending exactly at start does not; a point event overlaps when it
// starts in range.
func (s ScheduledSpan) Overlaps(start, end time.Time) bool {
	if !s.Start.Before(end) {
		return false
	}
	if !s.Start.Before(start) {
		return true
	}
	return s.End != nil && s.End.After(start)
}

// RecurringEvent is a series as stored: the rule is kept in its text encoding.
type RecurringEvent struct {
	RecurringEventID int          `json:"recurring_event_id"`
	UserID           int64        `json:"user_id"`
	LabelID          *int         `json:"label_id"`
	Title            string       `json:"title"`
	RecurrenceRule   string       `json:"recurrence_rule"`
	ValidFrom        civil.Date   `json:"valid_from"`
	ValidTo          civil.Date   `json:"valid_to"`
	SkipDates        []civil.Date `json:"skip_dates"`
	CreatedAt        time.Time    `json:"created_at"`
}

// ValidateWindow rejects a series that ends before it starts.
func (e *RecurringEvent) ValidateWindow() error {
	if e.ValidTo.Before(e.ValidFrom) {
		return ErrInvalidValidityWindow.Wrap(fmt.Errorf("valid_to %s is before valid_from %s", e.ValidTo, e.ValidFrom))
	}
	return nil
}

// Window parses the stored rule. A rule that no longer parses yields a window
// with a nil Rule, which has no occurrences.
func (e *RecurringEvent) Window() RecurringWindow {
	rule, err := recurrence.Parse(e.RecurrenceRule)
	if err != nil {
		rule = nil
	}
	return RecurringWindow{
		OwnerID:   e.UserID,
		ValidFrom: e.ValidFrom,
		ValidTo:   e.ValidTo,
		Rule:      rule,
		SkipDates: recurrence.NewDateSet(e.SkipDates...),
	}
}

// RecurringWindow is a parsed series bounded by its validity dates
// (inclusive).
type RecurringWindow struct {
	OwnerID   int64
	ValidFrom civil.Date
	ValidTo   civil.Date
	Rule      recurrence.Rule
	SkipDates recurrence.DateSet
}
