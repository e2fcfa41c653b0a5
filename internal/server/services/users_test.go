package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, "  Ann ", " Ann@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, []byte("secret1"), u.PasswordHash)

	_, err = e.users.Register(ctx, "Other", "ANN@example.com", "secret2")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for name, in := range map[string][3]string{
		"no name":        {"", "a@example.com", "secret1"},
		"no email":       {"Ann", " ", "secret1"},
		"short password": {"Ann", "a@example.com", "12345"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.users.Register(ctx, in[0], in[1], in[2])
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)

	pair, err := e.users.Login(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	sub, err := e.sessions.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	_, err = e.users.Login(ctx, "ann@example.com", "wrong-password")
	assert.Equal(t, common.ErrInvalidCredentials, err)

	_, err = e.users.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, common.ErrInvalidCredentials, err, "unknown email must look like a wrong password")
}

func TestGetAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	pair, err := e.users.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	got, err := e.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, e.users.Delete(ctx, u.ID))

	_, err = e.users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.sessions.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "sessions go with the account")

	assert.ErrorIs(t, e.users.Delete(ctx, u.ID), common.ErrorNotFound)
}
