package models

import "time"

// Meal is one eaten meal as recorded by its owner.
type Meal struct {
	ID          string
	UserID      string
	Name        string
	Description string
	// EatenAt is when the meal happened; it orders the diet streak.
	EatenAt  time.Time
	IsOnDiet bool
	// PhotoKey is the object-storage key of the meal photo, empty if none.
	PhotoKey  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OnDiet lets a Meal feed streak.Best directly.
func (m *Meal) OnDiet() bool { return m.IsOnDiet }

// MealMetrics summarises a user's meal history.
type MealMetrics struct {
	TotalMeals         int
	OnDietMeals        int
	OffDietMeals       int
	BestOnDietSequence int
}
