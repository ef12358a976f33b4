package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/identity"
	"github.com/hray3182/daybook/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetOrCreate(ctx context.Context, userID int64, userName string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO "user" (user_id, user_name) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_name = EXCLUDED.user_name
		 RETURNING user_id, user_name`,
		userID, userName,
	).Scan(&user.UserID, &user.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the timezone from their settings, or the
// default timezone when no settings row exists.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT u.user_id, u.user_name, COALESCE(s.timezone, $2)
		 FROM "user" u LEFT JOIN user_settings s ON s.user_id = u.user_id
		 WHERE u.user_id = $1`,
		userID, models.DefaultTimezone,
	).Scan(&user.UserID, &user.UserName, &user.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CurrentUser loads the user carried by ctx. An id without a user row is
// treated as unauthenticated.
func (r *UserRepository) CurrentUser(ctx context.Context) (*models.User, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := r.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, identity.ErrNoUser.Wrap(err)
	}
	return user, err
}

// ListIDs returns every user id, ascending.
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT user_id FROM "user" ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, rows.Err()
}
