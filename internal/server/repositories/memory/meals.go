package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/google/uuid"
)

type MealRepository struct {
	s  *Store
	db dbx.DBTX
}

func (s *Store) Meals(db dbx.DBTX) *MealRepository {
	return &MealRepository{s: s, db: db}
}

func (r *MealRepository) Create(ctx context.Context, m *models.Meal) (*models.Meal, error) {
	defer r.s.lock(r.db)()

	if _, ok := r.s.st.users[m.UserID]; !ok {
		return nil, common.ErrorNotFound
	}

	now := r.s.now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.s.st.meals[m.ID] = mealRow{meal: *m, seq: r.s.nextSeq()}
	return m, nil
}

func (r *MealRepository) owned(userID, id string) (mealRow, bool) {
	row, ok := r.s.st.meals[id]
	if !ok || row.meal.UserID != userID {
		return mealRow{}, false
	}
	return row, true
}

func (r *MealRepository) Get(ctx context.Context, userID, id string) (*models.Meal, error) {
	defer r.s.lock(r.db)()

	row, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &row.meal, nil
}

// rowsOf returns the user's rows ordered by eaten_at then insertion order.
func (r *MealRepository) rowsOf(userID string) []mealRow {
	var rows []mealRow
	for _, row := range r.s.st.meals {
		if row.meal.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.meal.EatenAt.Equal(b.meal.EatenAt) {
			return a.meal.EatenAt.Before(b.meal.EatenAt)
		}
		return a.seq < b.seq
	})
	return rows
}

func (r *MealRepository) ListByUser(ctx context.Context, userID string) ([]*models.Meal, error) {
	defer r.s.lock(r.db)()

	rows := r.rowsOf(userID)
	result := make([]*models.Meal, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		m := rows[i].meal
		result = append(result, &m)
	}
	return result, nil
}

func (r *MealRepository) Update(ctx context.Context, m *models.Meal) (*models.Meal, error) {
	defer r.s.lock(r.db)()

	row, ok := r.owned(m.UserID, m.ID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	row.meal.Name = m.Name
	row.meal.Description = m.Description
	row.meal.EatenAt = m.EatenAt
	row.meal.IsOnDiet = m.IsOnDiet
	row.meal.UpdatedAt = r.s.now().UTC()
	r.s.st.meals[m.ID] = row

	out := row.meal
	return &out, nil
}

func (r *MealRepository) Delete(ctx context.Context, userID, id string) error {
	defer r.s.lock(r.db)()

	if _, ok := r.owned(userID, id); !ok {
		return common.ErrorNotFound
	}
	delete(r.s.st.meals, id)
	return nil
}

func (r *MealRepository) SetPhotoKey(ctx context.Context, userID, id, key string) error {
	defer r.s.lock(r.db)()

	row, ok := r.owned(userID, id)
	if !ok {
		return common.ErrorNotFound
	}
	row.meal.PhotoKey = key
	row.meal.UpdatedAt = r.s.now().UTC()
	r.s.st.meals[id] = row
	return nil
}

func (r *MealRepository) DietFlags(ctx context.Context, userID string) ([]bool, error) {
	defer r.s.lock(r.db)()

	rows := r.rowsOf(userID)
	flags := make([]bool, len(rows))
	for i, row := range rows {
		flags[i] = row.meal.IsOnDiet
	}
	return flags, nil
}
