package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/auth"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/dmitrijs2005/dailydiet/internal/server/photos"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailydiet/internal/streak"
)

// PhotoStorage hands out presigned URLs for object keys.
type PhotoStorage interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// MealInput is the user-editable part of a meal.
type MealInput struct {
	Name        string
	Description string
	EatenAt     time.Time
	IsOnDiet    bool
}

// PhotoUpload is where and under which key a photo should be uploaded.
type PhotoUpload struct {
	Key       string
	UploadURL string
}

type MealService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	photos      PhotoStorage
	clock       auth.Clock
	logger      logging.Logger
}

func NewMealService(store dbx.Store, m repomanager.RepositoryManager, photos PhotoStorage, logger logging.Logger) *MealService {
	return &MealService{
		store:       store,
		repomanager: m,
		photos:      photos,
		clock:       auth.SystemClock{},
		logger:      logger.With("module", "meals"),
	}
}

func (in MealInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || in.EatenAt.IsZero() {
		return fmt.Errorf("%w: name and eaten_at are required", common.ErrorValidation)
	}
	return nil
}

func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*models.Meal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repomanager.Meals(s.store.DB()).Create(ctx, &models.Meal{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		EatenAt:     in.EatenAt,
		IsOnDiet:    in.IsOnDiet,
	})
}

// List returns the user's meals, most recent first.
func (s *MealService) List(ctx context.Context, userID string) ([]*models.Meal, error) {
	return s.repomanager.Meals(s.store.DB()).ListByUser(ctx, userID)
}

func (s *MealService) Get(ctx context.Context, userID, id string) (*models.Meal, error) {
	return s.repomanager.Meals(s.store.DB()).Get(ctx, userID, id)
}

func (s *MealService) Update(ctx context.Context, userID, id string, in MealInput) (*models.Meal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repomanager.Meals(s.store.DB()).Update(ctx, &models.Meal{
		ID:          id,
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		EatenAt:     in.EatenAt,
		IsOnDiet:    in.IsOnDiet,
	})
}

func (s *MealService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Meals(s.store.DB()).Delete(ctx, userID, id)
}

// Metrics summarises the user's history. The best on-diet sequence is
// computed over meals in eaten_at order.
func (s *MealService) Metrics(ctx context.Context, userID string) (*models.MealMetrics, error) {
	flags, err := s.repomanager.Meals(s.store.DB()).DietFlags(ctx, userID)
	if err != nil {
		return nil, err
	}

	m := &models.MealMetrics{TotalMeals: len(flags)}
	for _, on := range flags {
		if on {
			m.OnDietMeals++
		}
	}
	m.OffDietMeals = m.TotalMeals - m.OnDietMeals
	m.BestOnDietSequence = streak.Best(streak.Flags(flags))
	return m, nil
}

// PhotoUploadURL assigns a fresh object key to the meal and returns a
// presigned PUT URL for it. Any previous photo key is replaced; the old
// object stays in storage and is only logged.
func (s *MealService) PhotoUploadURL(ctx context.Context, userID, id string) (*PhotoUpload, error) {
	meal, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key := photos.NewKey(userID, s.clock.Now().UTC())

	url, err := s.photos.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Meals(s.store.DB()).SetPhotoKey(ctx, userID, id, key); err != nil {
		return nil, err
	}
	if meal.PhotoKey != "" {
		s.logger.Info(ctx, "meal photo replaced", "meal_id", id, "old_key", meal.PhotoKey)
	}
	return &PhotoUpload{Key: key, UploadURL: url}, nil
}

// PhotoURL returns a presigned download URL, or common.ErrorNotFound when
// the meal has no photo.
func (s *MealService) PhotoURL(ctx context.Context, userID, id string) (string, error) {
	meal, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if meal.PhotoKey == "" {
		return "", common.ErrorNotFound
	}
	return s.photos.PresignGet(ctx, meal.PhotoKey)
}
