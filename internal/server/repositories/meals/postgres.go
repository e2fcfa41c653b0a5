package meals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements meal storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	query := `
		INSERT INTO meals (id, user_id, name, description, eaten_at, is_on_diet)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	meal.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		meal.ID, meal.UserID, meal.Name, meal.Description, meal.EatenAt, meal.IsOnDiet,
	).Scan(&meal.CreatedAt, &meal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return meal, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Meal, error) {
	query := `
		SELECT id, user_id, name, description, eaten_at, is_on_diet, photo_key, created_at, updated_at
		FROM meals
		WHERE id = $1 AND user_id = $2
	`
	meal := &models.Meal{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&meal.ID, &meal.UserID, &meal.Name, &meal.Description, &meal.EatenAt,
		&meal.IsOnDiet, &meal.PhotoKey, &meal.CreatedAt, &meal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return meal, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Meal, error) {
	query := `
		SELECT id, user_id, name, description, eaten_at, is_on_diet, photo_key, created_at, updated_at
		FROM meals
		WHERE user_id = $1
		ORDER BY eaten_at DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select meals: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Meal, 0)
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Description, &m.EatenAt,
			&m.IsOnDiet, &m.PhotoKey, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	query := `
		UPDATE meals
		SET name = $3, description = $4, eaten_at = $5, is_on_diet = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING photo_key, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		meal.ID, meal.UserID, meal.Name, meal.Description, meal.EatenAt, meal.IsOnDiet,
	).Scan(&meal.PhotoKey, &meal.CreatedAt, &meal.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return meal, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM meals
		WHERE id = $1 AND user_id = $2
	`
	return r.execOne(ctx, query, id, userID)
}

func (r *PostgresRepository) SetPhotoKey(ctx context.Context, userID, id, key string) error {
	query := `
		UPDATE meals
		SET photo_key = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	return r.execOne(ctx, query, id, userID, key)
}

// execOne runs a statement expected to touch exactly one owned row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) DietFlags(ctx context.Context, userID string) ([]bool, error) {
	query := `
		SELECT is_on_diet
		FROM meals
		WHERE user_id = $1
		ORDER BY eaten_at ASC, created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select diet flags: %w", err)
	}
	defer rows.Close()

	var flags []bool
	for rows.Next() {
		var onDiet bool
		if err := rows.Scan(&onDiet); err != nil {
			return nil, err
		}
		flags = append(flags, onDiet)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}
