package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `event_id, user_id, label_id, title, description, start_time, end_time,
		 confirmed, completed, created_at`

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (user_id, label_id, title, description, start_time, end_time, confirmed, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING event_id, created_at`,
		event.UserID, event.LabelID, event.Title, event.Description, event.StartTime, event.EndTime,
		event.Confirmed, event.Completed,
	).Scan(&event.EventID, &event.CreatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int, userID int64) (*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := r.scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrEventNotFound
	}
	return events[0], nil
}

func (r *EventRepository) GetByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

func (r *EventRepository) SetConfirmed(ctx context.Context, eventID int, userID int64, confirmed bool) error {
	return r.setFlag(ctx, "confirmed", eventID, userID, confirmed)
}

func (r *EventRepository) SetCompleted(ctx context.Context, eventID int, userID int64, completed bool) error {
	return r.setFlag(ctx, "completed", eventID, userID, completed)
}

func (r *EventRepository) setFlag(ctx context.Context, column string, eventID int, userID int64, value bool) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET `+column+` = $1 WHERE event_id = $2 AND user_id = $3`,
		value, eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, eventID int, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM event WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// FindConfirmedSpans returns confirmed events overlapping [start, end) as
// ScheduledSpan.Overlaps defines it: a span ending exactly at start is out,
// a point event is in when its start is in range.
func (r *EventRepository) FindConfirmedSpans(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduledSpan, error) {
	return r.querySpans(ctx,
		`SELECT user_id, label_id, start_time, end_time, confirmed, completed FROM event
		 WHERE user_id = $1 AND confirmed
		   AND start_time < $3 AND (start_time >= $2 OR end_time > $2)
		 ORDER BY start_time ASC`,
		userID, start, end,
	)
}

// FindCompletedLabelSpans returns confirmed, completed events of the label
// starting in [start, end).
func (r *EventRepository) FindCompletedLabelSpans(ctx context.Context, userID int64, labelID int, start, end time.Time) ([]models.ScheduledSpan, error) {
	return r.querySpans(ctx,
		`SELECT user_id, label_id, start_time, end_time, confirmed, completed FROM event
		 WHERE user_id = $1 AND label_id = $2 AND confirmed AND completed
		   AND start_time >= $3 AND start_time < $4
		 ORDER BY start_time ASC`,
		userID, labelID, start, end,
	)
}

// FindCompletedSpans returns labelled, confirmed, completed events with an
// end that start in [start, end). Used to rebuild monthly duration
// aggregates, so it selects the same events CountCompletedByLabel counts.
func (r *EventRepository) FindCompletedSpans(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduledSpan, error) {
	return r.querySpans(ctx,
		`SELECT user_id, label_id, start_time, end_time, confirmed, completed FROM event
		 WHERE user_id = $1 AND label_id IS NOT NULL AND confirmed AND completed AND end_time IS NOT NULL
		   AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time ASC`,
		userID, start, end,
	)
}

func (r *EventRepository) CountCompletedByLabel(ctx context.Context, userID int64, labelID int, start, end time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event
		 WHERE user_id = $1 AND label_id = $2 AND confirmed AND completed
		   AND start_time >= $3 AND start_time < $4`,
		userID, labelID, start, end,
	).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to count completed events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) querySpans(ctx context.Context, query string, args ...any) ([]models.ScheduledSpan, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var spans []models.ScheduledSpan
	for rows.Next() {
		var span models.ScheduledSpan
		if err := rows.Scan(&span.OwnerID, &span.LabelID, &span.Start, &span.End, &span.Confirmed, &span.Completed); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}

func (r *EventRepository) scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.EventID, &event.UserID, &event.LabelID, &event.Title, &event.Description,
			&event.StartTime, &event.EndTime, &event.Confirmed, &event.Completed, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
