// Package common defines shared constants and sentinel errors used across
// the DailyDiet server and client. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// ErrorUnauthorized is the single error kind for every authentication
	// failure. The reasons below wrap it; they are meant for logs only.
	ErrorUnauthorized = errors.New("unauthorized")
)

// Authentication failure reasons.
var (
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrorUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrorUnauthorized)
	ErrRefreshTokenExpired = fmt.Errorf("%w: refresh token expired", ErrorUnauthorized)
	ErrInvalidToken        = fmt.Errorf("%w: invalid access token", ErrorUnauthorized)
	ErrTokenExpired        = fmt.Errorf("%w: access token expired", ErrorUnauthorized)
)
