package memory

import (
	"context"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	s  *Store
	db dbx.DBTX
}

func (s *Store) Users(db dbx.DBTX) *UserRepository {
	return &UserRepository{s: s, db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	defer r.s.lock(r.db)()

	for _, existing := range r.s.st.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = r.s.now().UTC()
	stored := *u
	stored.PasswordHash = append([]byte(nil), u.PasswordHash...)
	r.s.st.users[u.ID] = stored
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.s.lock(r.db)()

	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.s.lock(r.db)()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// Delete removes the user together with their meals and refresh tokens,
// mirroring ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.db)()

	if _, ok := r.s.st.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.st.users, id)

	for mid, row := range r.s.st.meals {
		if row.meal.UserID == id {
			delete(r.s.st.meals, mid)
		}
	}
	for tid, t := range r.s.st.tokens {
		if t.UserID == id {
			delete(r.s.st.tokens, tid)
			delete(r.s.st.byHash, t.TokenHash)
		}
	}
	return nil
}
