package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/auth"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/dmitrijs2005/dailydiet/internal/server/ratelimit"
	"github.com/dmitrijs2005/dailydiet/internal/server/services"
)

type SessionService interface {
	AccessVerifier
	Rotate(ctx context.Context, value string) (*services.TokenPair, error)
	Revoke(ctx context.Context, userID, value string) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type MealService interface {
	Create(ctx context.Context, userID string, in services.MealInput) (*models.Meal, error)
	List(ctx context.Context, userID string) ([]*models.Meal, error)
	Get(ctx context.Context, userID, id string) (*models.Meal, error)
	Update(ctx context.Context, userID, id string, in services.MealInput) (*models.Meal, error)
	Delete(ctx context.Context, userID, id string) error
	Metrics(ctx context.Context, userID string) (*models.MealMetrics, error)
	PhotoUploadURL(ctx context.Context, userID, id string) (*services.PhotoUpload, error)
	PhotoURL(ctx context.Context, userID, id string) (string, error)
}

// Handlers serves the JSON API. Limiter may be nil, which disables login
// rate limiting.
type Handlers struct {
	sessions SessionService
	users    UserService
	meals    MealService
	limiter  ratelimit.Limiter
	clock    auth.Clock
	logger   logging.Logger
}

func NewHandlers(sessions SessionService, users UserService, meals MealService, limiter ratelimit.Limiter, logger logging.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		users:    users,
		meals:    meals,
		limiter:  limiter,
		clock:    auth.SystemClock{},
		logger:   logger.With("module", "rest"),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type mealResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EatenAt     time.Time `json:"eaten_at"`
	IsOnDiet    bool      `json:"is_on_diet"`
	HasPhoto    bool      `json:"has_photo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newMealResponse(m *models.Meal) mealResponse {
	return mealResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		EatenAt:     m.EatenAt,
		IsOnDiet:    m.IsOnDiet,
		HasPhoto:    m.PhotoKey != "",
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type metricsResponse struct {
	TotalMeals         int `json:"total_meals"`
	OnDietMeals        int `json:"on_diet_meals"`
	OffDietMeals       int `json:"off_diet_meals"`
	BestOnDietSequence int `json:"best_on_diet_sequence"`
}
