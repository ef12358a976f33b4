package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/recurrence"
)

type RecurringEventRepository struct {
	db *database.DB
}

func NewRecurringEventRepository(db *database.DB) *RecurringEventRepository {
	return &RecurringEventRepository{db: db}
}

// Create stores a series. The rule is stored in canonical form and must parse.
func (r *RecurringEventRepository) Create(ctx context.Context, event *models.RecurringEvent) error {
	rule, err := recurrence.Parse(event.RecurrenceRule)
	if err != nil {
		return err
	}
	if err := event.ValidateWindow(); err != nil {
		return err
	}
	event.RecurrenceRule = rule.String()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO recurring_event (user_id, label_id, title, recurrence_rule, valid_from, valid_to)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING recurring_event_id, created_at`,
		event.UserID, event.LabelID, event.Title, event.RecurrenceRule,
		dateValue(event.ValidFrom), dateValue(event.ValidTo),
	).Scan(&event.RecurringEventID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recurring event: %w", err)
	}

	for _, d := range event.SkipDates {
		if err := insertSkip(ctx, tx, event.RecurringEventID, d); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RecurringEventRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.RecurringEvent, error) {
	return r.query(ctx,
		`SELECT e.recurring_event_id, e.user_id, e.label_id, e.title, e.recurrence_rule,
		        e.valid_from, e.valid_to, e.created_at,
		        COALESCE(array_agg(s.skip_date ORDER BY s.skip_date) FILTER (WHERE s.skip_date IS NOT NULL), '{}')
		 FROM recurring_event e
		 LEFT JOIN recurring_event_skip s ON s.recurring_event_id = e.recurring_event_id
		 WHERE e.user_id = $1
		 GROUP BY e.recurring_event_id
		 ORDER BY e.valid_from ASC, e.recurring_event_id ASC`,
		userID,
	)
}

// FindWindows returns the user's series whose validity overlaps [from, to].
func (r *RecurringEventRepository) FindWindows(ctx context.Context, userID int64, from, to civil.Date) ([]models.RecurringWindow, error) {
	events, err := r.query(ctx,
		`SELECT e.recurring_event_id, e.user_id, e.label_id, e.title, e.recurrence_rule,
		        e.valid_from, e.valid_to, e.created_at,
		        COALESCE(array_agg(s.skip_date ORDER BY s.skip_date) FILTER (WHERE s.skip_date IS NOT NULL), '{}')
		 FROM recurring_event e
		 LEFT JOIN recurring_event_skip s
		        ON s.recurring_event_id = e.recurring_event_id AND s.skip_date BETWEEN $2 AND $3
		 WHERE e.user_id = $1 AND e.valid_from <= $3 AND e.valid_to >= $2
		 GROUP BY e.recurring_event_id
		 ORDER BY e.recurring_event_id ASC`,
		userID, dateValue(from), dateValue(to),
	)
	if err != nil {
		return nil, err
	}

	windows := make([]models.RecurringWindow, 0, len(events))
	for _, e := range events {
		windows = append(windows, e.Window())
	}
	return windows, nil
}

// Skip cancels a single occurrence of a series.
func (r *RecurringEventRepository) Skip(ctx context.Context, recurringEventID int, userID int64, date civil.Date) error {
	var owner int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id FROM recurring_event WHERE recurring_event_id = $1`,
		recurringEventID,
	).Scan(&owner)
	if err := seriesOwnerError(err, owner, userID); err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO recurring_event_skip (recurring_event_id, skip_date) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		recurringEventID, dateValue(date),
	)
	if err != nil {
		return fmt.Errorf("failed to skip occurrence: %w", err)
	}
	return nil
}

// seriesOwnerError maps an owner lookup. A missing series and one owned by
// someone else both read as not found; storage failures pass through.
func seriesOwnerError(err error, owner, userID int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSeriesNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check series owner: %w", err)
	}
	if owner != userID {
		return ErrSeriesNotFound
	}
	return nil
}

func (r *RecurringEventRepository) Delete(ctx context.Context, recurringEventID int, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM recurring_event WHERE recurring_event_id = $1 AND user_id = $2`,
		recurringEventID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSeriesNotFound
	}
	return nil
}

func (r *RecurringEventRepository) query(ctx context.Context, query string, args ...any) ([]*models.RecurringEvent, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring events: %w", err)
	}
	defer rows.Close()

	var events []*models.RecurringEvent
	for rows.Next() {
		var (
			event     = &models.RecurringEvent{}
			validFrom time.Time
			validTo   time.Time
			skipDates []time.Time
		)
		if err := rows.Scan(&event.RecurringEventID, &event.UserID, &event.LabelID, &event.Title,
			&event.RecurrenceRule, &validFrom, &validTo, &event.CreatedAt, &skipDates); err != nil {
			return nil, err
		}
		event.ValidFrom = civil.DateOf(validFrom)
		event.ValidTo = civil.DateOf(validTo)
		for _, d := range skipDates {
			event.SkipDates = append(event.SkipDates, civil.DateOf(d))
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func insertSkip(ctx context.Context, tx pgx.Tx, recurringEventID int, d civil.Date) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO recurring_event_skip (recurring_event_id, skip_date) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		recurringEventID, dateValue(d),
	)
	if err != nil {
		return fmt.Errorf("failed to insert skip date: %w", err)
	}
	return nil
}

// dateValue encodes a calendar date for a DATE column.
func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}
