package memory

import (
	"context"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/google/uuid"
)

type RefreshTokenRepository struct {
	s  *Store
	db dbx.DBTX
}

func (s *Store) RefreshTokens(db dbx.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{s: s, db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	defer r.s.lock(r.db)()

	if _, ok := r.s.st.users[t.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, dup := r.s.st.byHash[t.TokenHash]; dup {
		return nil, common.ErrorAlreadyExists
	}

	t.ID = uuid.NewString()
	t.Revoked = false
	t.CreatedAt = r.s.now().UTC()
	r.s.st.tokens[t.ID] = *t
	r.s.st.byHash[t.TokenHash] = t.ID
	return t, nil
}

func (r *RefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	defer r.s.lock(r.db)()

	id, ok := r.s.st.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := r.s.st.tokens[id]
	return &t, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) (bool, error) {
	defer r.s.lock(r.db)()

	return r.revoke(id), nil
}

func (r *RefreshTokenRepository) RevokeForUser(ctx context.Context, userID, hash string) (bool, error) {
	defer r.s.lock(r.db)()

	id, ok := r.s.st.byHash[hash]
	if !ok || r.s.st.tokens[id].UserID != userID {
		return false, nil
	}
	return r.revoke(id), nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	defer r.s.lock(r.db)()

	var n int64
	for id, t := range r.s.st.tokens {
		if t.UserID == userID && r.revoke(id) {
			n++
		}
	}
	return n, nil
}

// revoke flips an active token to revoked. Caller holds the lock.
func (r *RefreshTokenRepository) revoke(id string) bool {
	t, ok := r.s.st.tokens[id]
	if !ok || t.Revoked {
		return false
	}
	t.Revoked = true
	r.s.st.tokens[id] = t
	return true
}
