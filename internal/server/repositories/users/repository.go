// Package users declares the server-side repository contract for user
// accounts and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/dailydiet/internal/server/models"
)

// Repository stores user accounts.
type Repository interface {
	// Create inserts user, filling ID and CreatedAt. A taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns common.ErrorNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns common.ErrorNotFound when the user does not exist.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Delete removes the user together with their meals and refresh tokens.
	Delete(ctx context.Context, id string) error
}
