package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/auth"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

// UserService handles registration, login and account removal.
type UserService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	logger      logging.Logger
}

func NewUserService(store dbx.Store, m repomanager.RepositoryManager, sessions *SessionService, logger logging.Logger) *UserService {
	return &UserService{
		store:       store,
		repomanager: m,
		sessions:    sessions,
		logger:      logger.With("module", "users"),
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: name, email and a password of at least %d characters are required", common.ErrorValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.store.DB()).Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and opens a new session. Unknown emails and wrong
// passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.store.DB()).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	var hash []byte
	if user != nil {
		hash = user.PasswordHash
	}
	ok, err := auth.CheckPassword(hash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.sessions.Issue(ctx, user.ID)
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.store.DB()).GetByID(ctx, userID)
}

// Delete removes the account. Meals and refresh tokens go with it.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.repomanager.Users(s.store.DB()).Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", userID)
	return nil
}
