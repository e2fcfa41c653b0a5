// Package services contains server-side business logic. This file implements
// SessionService: issuing access/refresh token pairs, single-use rotation
// with reuse detection, logout, and access token verification.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/auth"
	"github.com/dmitrijs2005/dailydiet/internal/server/config"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a single-use refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime.
	ExpiresIn time.Duration
}

type SessionService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	tokens      auth.TokenGenerator
	clock       auth.Clock
	metrics     *metrics.Metrics
	logger      logging.Logger
}

type SessionOption func(*SessionService)

func WithClock(c auth.Clock) SessionOption {
	return func(s *SessionService) { s.clock = c }
}

func WithTokenGenerator(g auth.TokenGenerator) SessionOption {
	return func(s *SessionService) { s.tokens = g }
}

func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *SessionService) { s.metrics = m }
}

func NewSessionService(store dbx.Store, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:       store,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenValidityDuration,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		tokens:      auth.RandomTokenGenerator{},
		clock:       auth.SystemClock{},
		logger:      logger.With("module", "sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue starts a new session for userID.
func (s *SessionService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	return s.issue(ctx, s.store.DB(), userID, s.clock.Now())
}

func (s *SessionService) issue(ctx context.Context, db dbx.DBTX, userID string, now time.Time) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	value, hash, err := s.tokens.New()
	if err != nil {
		return nil, err
	}

	_, err = s.repomanager.RefreshTokens(db).Create(ctx, &models.RefreshToken{
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.refreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: value, ExpiresIn: s.accessTTL}, nil
}

// rotation records what a Rotate transaction decided. The transaction
// commits for every outcome so that reuse and expiry revocations persist
// even though the caller gets an error.
type rotation struct {
	pair    *TokenPair
	userID  string
	result  string
	revoked int64
	err     error
}

// Rotate exchanges a refresh token value for a new pair. The presented token
// is revoked in the same transaction that creates its successor; revocation
// is a compare-and-swap on revoked, so of two concurrent calls with the same
// value only one can win. A revoked token presented again is treated as
// theft and every active token of its owner is revoked.
func (s *SessionService) Rotate(ctx context.Context, value string) (*TokenPair, error) {
	var r rotation

	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		r = rotation{}
		repo := s.repomanager.RefreshTokens(tx)

		tok, err := repo.FindByHash(ctx, auth.HashRefreshToken(value))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				r.result, r.err = metrics.RotationInvalid, common.ErrInvalidRefreshToken
				return nil
			}
			return err
		}
		r.userID = tok.UserID

		if tok.Revoked {
			return s.revokeChain(ctx, repo, tok.UserID, &r)
		}

		now := s.clock.Now()
		if now.After(tok.ExpiresAt) {
			ok, err := repo.Revoke(ctx, tok.ID)
			if err != nil {
				return err
			}
			if ok {
				r.revoked = 1
			}
			r.result, r.err = metrics.RotationExpired, common.ErrRefreshTokenExpired
			return nil
		}

		won, err := repo.Revoke(ctx, tok.ID)
		if err != nil {
			return err
		}
		if !won {
			// Someone rotated it between our read and our update.
			return s.revokeChain(ctx, repo, tok.UserID, &r)
		}

		pair, err := s.issue(ctx, tx, tok.UserID, now)
		if err != nil {
			return err
		}
		r.pair, r.result = pair, metrics.RotationOK
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.metrics.Rotation(r.result)
	switch r.result {
	case metrics.RotationReuse:
		s.metrics.Revoked(metrics.RevokeReuse, r.revoked)
		s.logger.Warn(ctx, "refresh token reuse detected, all sessions revoked", "user_id", r.userID, "revoked", r.revoked)
	case metrics.RotationExpired:
		s.metrics.Revoked(metrics.RevokeExpired, r.revoked)
		s.logger.Info(ctx, "expired refresh token presented", "user_id", r.userID)
	case metrics.RotationInvalid:
		s.logger.Info(ctx, "unknown refresh token presented")
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.pair, nil
}

type chainRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
}

func (s *SessionService) revokeChain(ctx context.Context, repo chainRevoker, userID string, r *rotation) error {
	n, err := repo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	r.revoked = n
	r.result, r.err = metrics.RotationReuse, common.ErrInvalidRefreshToken
	return nil
}

// Revoke logs userID out. With a value only that token is revoked, and only
// if it belongs to userID; otherwise every active token of the user is.
// Revoking something already revoked or unknown is not an error.
func (s *SessionService) Revoke(ctx context.Context, userID, value string) error {
	repo := s.repomanager.RefreshTokens(s.store.DB())

	var n int64
	if value == "" {
		var err error
		if n, err = repo.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke all sessions: %w", err)
		}
	} else {
		ok, err := repo.RevokeForUser(ctx, userID, auth.HashRefreshToken(value))
		if err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		if ok {
			n = 1
		}
	}

	s.metrics.Revoked(metrics.RevokeLogout, n)
	s.logger.Info(ctx, "logout", "user_id", userID, "all", value == "", "revoked", n)
	return nil
}

// VerifyAccess checks an access token and returns the user id it carries.
// Failures wrap common.ErrorUnauthorized.
func (s *SessionService) VerifyAccess(ctx context.Context, token string) (string, error) {
	return auth.ParseToken(token, s.jwtSecret, s.clock.Now())
}
