// Package auth holds the credential primitives used by the session and user
// services: HS256 access tokens, opaque refresh token values with their
// digests, and bcrypt password hashes.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the principal in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Clock is the time source of the auth flow. Tests substitute a fixed one.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// GenerateToken signs an access token for userID valid from now for ttl.
func GenerateToken(userID string, secretKey []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies signature and expiry and returns the principal.
// Expired tokens yield common.ErrTokenExpired; everything else that fails
// yields common.ErrInvalidToken. Both wrap common.ErrorUnauthorized.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}
