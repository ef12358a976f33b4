package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type LabelRepository struct {
	db *database.DB
}

func NewLabelRepository(db *database.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Label, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT label_id, user_id, label_name, color
		 FROM label WHERE user_id = $1 ORDER BY label_name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		label := &models.Label{}
		if err := rows.Scan(&label.LabelID, &label.UserID, &label.LabelName, &label.Color); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// GetByID looks a label up regardless of owner; pair it with
// ValidateOwnership.
func (r *LabelRepository) GetByID(ctx context.Context, labelID int) (*models.Label, error) {
	label := &models.Label{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT label_id, user_id, label_name, color FROM label WHERE label_id = $1`,
		labelID,
	).Scan(&label.LabelID, &label.UserID, &label.LabelName, &label.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLabelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	return label, nil
}

func (r *LabelRepository) ValidateOwnership(ctx context.Context, labelID int, userID int64) error {
	var owner int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id FROM label WHERE label_id = $1`,
		labelID,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLabelNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check label owner: %w", err)
	}
	if owner != userID {
		return ErrLabelNotOwned
	}
	return nil
}

func (r *LabelRepository) GetOrCreateByName(ctx context.Context, userID int64, name string) (*models.Label, error) {
	label := &models.Label{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO label (user_id, label_name) VALUES ($1, $2)
		 ON CONFLICT (user_id, label_name) DO UPDATE SET label_name = EXCLUDED.label_name
		 RETURNING label_id, user_id, label_name, color`,
		userID, name,
	).Scan(&label.LabelID, &label.UserID, &label.LabelName, &label.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create label: %w", err)
	}
	return label, nil
}

func (r *LabelRepository) Delete(ctx context.Context, labelID int, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM label WHERE label_id = $1 AND user_id = $2`,
		labelID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLabelNotFound
	}
	return nil
}
