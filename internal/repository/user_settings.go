package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/daybook/internal/apperr"
	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

// ErrInvalidTimezone is returned for names time.LoadLocation rejects.
var ErrInvalidTimezone = apperr.Validation("invalid timezone")

type UserSettingsRepository struct {
	db              *database.DB
	defaultTimezone string
}

func NewUserSettingsRepository(db *database.DB, defaultTimezone string) *UserSettingsRepository {
	if defaultTimezone == "" {
		defaultTimezone = models.DefaultTimezone
	}
	return &UserSettingsRepository{db: db, defaultTimezone: defaultTimezone}
}

// GetOrCreate retrieves user settings, creating default settings if none exist
func (r *UserSettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	defaults := models.NewDefaultUserSettings(userID, r.defaultTimezone)
	settings := &models.UserSettings{}

	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, timezone, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING user_id, timezone, updated_at`,
		defaults.UserID, defaults.Timezone, defaults.UpdatedAt,
	).Scan(&settings.UserID, &settings.Timezone, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}
	return settings, nil
}

// SetTimezone stores an IANA zone name after checking it loads.
func (r *UserSettingsRepository) SetTimezone(ctx context.Context, userID int64, timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil || timezone == "" {
		return ErrInvalidTimezone.Wrap(fmt.Errorf("%q: %v", timezone, err))
	}

	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, timezone, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone, updated_at = EXCLUDED.updated_at`,
		userID, timezone, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}
	return nil
}
