// Package refreshtokens declares the server-side repository contract for
// refresh tokens. Rows are never deleted by the session logic; they only
// move from active to revoked.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/dailydiet/internal/server/models"
)

type Repository interface {
	// Create stores a new active token. ID and CreatedAt are filled in.
	Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error)

	// FindByHash looks a token up by the SHA-256 digest of its value.
	// It returns common.ErrorNotFound when no row matches.
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// Revoke flips revoked to true for an active token and reports whether
	// this call did it. A false result means some other caller got there
	// first.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeForUser revokes the token with the given digest only if it
	// belongs to userID. Unknown or foreign tokens are not an error.
	RevokeForUser(ctx context.Context, userID, hash string) (bool, error)

	// RevokeAllForUser revokes every active token of userID and returns the
	// number of rows changed.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
}
