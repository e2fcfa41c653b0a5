// Package meals declares the meal repository contract and its PostgreSQL
// implementation. Every lookup is scoped by owner: a meal that belongs to
// somebody else is reported as common.ErrorNotFound.
package meals

import (
	"context"

	"github.com/dmitrijs2005/dailydiet/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, meal *models.Meal) (*models.Meal, error)
	Get(ctx context.Context, userID, id string) (*models.Meal, error)
	// ListByUser returns the user's meals, most recent first.
	ListByUser(ctx context.Context, userID string) ([]*models.Meal, error)
	// Update replaces name, description, eaten_at and is_on_diet.
	Update(ctx context.Context, meal *models.Meal) (*models.Meal, error)
	Delete(ctx context.Context, userID, id string) error
	SetPhotoKey(ctx context.Context, userID, id, key string) error
	// DietFlags returns is_on_diet of every meal of the user ordered by
	// eaten_at ascending. It is the input of the streak calculator.
	DietFlags(ctx context.Context, userID string) ([]bool, error)
}
