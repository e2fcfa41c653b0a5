package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u, err := s.Users(s.DB()).Create(context.Background(), &models.User{Name: "n", Email: email, PasswordHash: []byte("h")})
	require.NoError(t, err)
	return u
}

func TestUsers_CreateDuplicateAndLookup(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	_, err := s.Users(nil).Create(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := s.Users(nil).GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users(nil).GetByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUsers_DeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	_, err := s.Meals(nil).Create(ctx, &models.Meal{UserID: u.ID, Name: "x", EatenAt: time.Now()})
	require.NoError(t, err)
	_, err = s.RefreshTokens(nil).Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, s.Users(nil).Delete(ctx, u.ID))

	list, err := s.Meals(nil).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = s.RefreshTokens(nil).FindByHash(ctx, "h1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, s.Users(nil).Delete(ctx, u.ID), common.ErrorNotFound)
}

func TestMeals_OrderingAndOwnership(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := seedUser(t, s, "a@example.com")
	bob := seedUser(t, s, "b@example.com")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	meals := s.Meals(nil)
	first, _ := meals.Create(ctx, &models.Meal{UserID: alice.ID, Name: "b", EatenAt: base, IsOnDiet: true})
	_, _ = meals.Create(ctx, &models.Meal{UserID: alice.ID, Name: "c", EatenAt: base.Add(time.Hour), IsOnDiet: false})
	// same eaten_at as first: insertion order breaks the tie
	_, _ = meals.Create(ctx, &models.Meal{UserID: alice.ID, Name: "b2", EatenAt: base, IsOnDiet: false})

	list, err := meals.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b2", "b"}, []string{list[0].Name, list[1].Name, list[2].Name})

	flags, err := meals.DietFlags(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, flags)

	_, err = meals.Get(ctx, bob.ID, first.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, meals.Delete(ctx, bob.ID, first.ID), common.ErrorNotFound)
	assert.ErrorIs(t, meals.SetPhotoKey(ctx, bob.ID, first.ID, "k"), common.ErrorNotFound)

	require.NoError(t, meals.SetPhotoKey(ctx, alice.ID, first.ID, "k"))
	got, err := meals.Get(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "k", got.PhotoKey)
}

func TestRefreshTokens_RevokeIsCompareAndSwap(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")
	repo := s.RefreshTokens(nil)

	tok, err := repo.Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	ok, err := repo.Revoke(ctx, tok.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Revoke(ctx, tok.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)
}

func TestRefreshTokens_RevokeForUserIgnoresForeign(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := seedUser(t, s, "a@example.com")
	bob := seedUser(t, s, "b@example.com")
	repo := s.RefreshTokens(nil)

	_, err := repo.Create(ctx, &models.RefreshToken{UserID: alice.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	ok, err := repo.RevokeForUser(ctx, bob.ID, "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.RevokeForUser(ctx, alice.ID, "h1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshTokens_RevokeAllForUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := seedUser(t, s, "a@example.com")
	bob := seedUser(t, s, "b@example.com")
	repo := s.RefreshTokens(nil)
	exp := time.Now().Add(time.Hour)

	for _, h := range []string{"a1", "a2", "a3"} {
		_, err := repo.Create(ctx, &models.RefreshToken{UserID: alice.ID, TokenHash: h, ExpiresAt: exp})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.RefreshToken{UserID: bob.ID, TokenHash: "b1", ExpiresAt: exp})
	require.NoError(t, err)

	n, err := repo.RevokeAllForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	b1, err := repo.FindByHash(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, b1.Revoked)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.RefreshTokens(tx).Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now()})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.RefreshTokens(nil).FindByHash(ctx, "h1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWithTx_RollsBackAndRethrowsPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			_ = s.Users(tx).Delete(ctx, u.ID)
			panic("kaboom")
		})
	})

	_, err := s.Users(nil).GetByID(ctx, u.ID)
	assert.NoError(t, err)
}

func TestWithTx_CommitsAndSerializes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com")

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				_, err := s.Meals(tx).Create(ctx, &models.Meal{UserID: u.ID, Name: "m", EatenAt: time.Now()})

				mu.Lock()
				inside--
				mu.Unlock()
				return err
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	list, err := s.Meals(nil).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 8)
}

func TestWithTx_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTx(ctx, func(context.Context, dbx.DBTX) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTxHandle_RunsNoSQL(t *testing.T) {
	s := NewStore()
	err := s.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, "UPDATE meals SET name = $1", "x")
		assert.ErrorIs(t, err, errNotSQL)

		_, err = tx.QueryContext(ctx, "SELECT id FROM meals")
		assert.ErrorIs(t, err, errNotSQL)

		var id string
		row := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", "a@example.com")
		require.NotNil(t, row)
		assert.ErrorIs(t, row.Scan(&id), errNotSQL)
		assert.Empty(t, id)
		return nil
	})
	require.NoError(t, err)
}
