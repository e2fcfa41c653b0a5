package models

import "time"

// RefreshToken is the server-side record of an issued refresh token.
// Only the SHA-256 digest of the token value is stored. Revoked never goes
// back from true to false.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Active reports whether the token can still be exchanged at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !now.After(t.ExpiresAt)
}
