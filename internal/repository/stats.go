package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/mo"

	"github.com/hray3182/daybook/internal/database"
)

const periodMonth = "MONTH"

// StatsRepository stores precomputed per-label monthly durations.
type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetMonthlyDuration(ctx context.Context, userID int64, labelID int, year int, month time.Month) (mo.Option[int], error) {
	var minutes int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT total_duration_minutes FROM label_monthly_stat
		 WHERE user_id = $1 AND label_id = $2 AND period_type = $3 AND year = $4 AND month = $5`,
		userID, labelID, periodMonth, year, int(month),
	).Scan(&minutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return mo.None[int](), nil
	}
	if err != nil {
		return mo.None[int](), fmt.Errorf("failed to get monthly duration: %w", err)
	}
	return mo.Some(minutes), nil
}

// UpsertMonthlyDurations replaces the stored totals for one user and month.
// Labels missing from totals are reset to zero.
func (r *StatsRepository) UpsertMonthlyDurations(ctx context.Context, userID int64, year int, month time.Month, totals map[int]int) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx,
		`UPDATE label_monthly_stat SET total_duration_minutes = 0, updated_at = $5
		 WHERE user_id = $1 AND period_type = $2 AND year = $3 AND month = $4`,
		userID, periodMonth, year, int(month), now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset monthly durations: %w", err)
	}

	for labelID, minutes := range totals {
		_, err := tx.Exec(ctx,
			`INSERT INTO label_monthly_stat (user_id, label_id, period_type, year, month, total_duration_minutes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (user_id, label_id, period_type, year, month)
			 DO UPDATE SET total_duration_minutes = EXCLUDED.total_duration_minutes, updated_at = EXCLUDED.updated_at`,
			userID, labelID, periodMonth, year, int(month), minutes, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert monthly duration: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit monthly durations: %w", err)
	}
	return len(totals), nil
}
