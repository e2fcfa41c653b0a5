package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTokenGenerator(t *testing.T) {
	gen := RandomTokenGenerator{}

	v1, h1, err := gen.New()
	require.NoError(t, err)
	v2, h2, err := gen.New()
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.NotEqual(t, h1, h2)

	raw, err := base64.RawURLEncoding.DecodeString(v1)
	require.NoError(t, err)
	assert.Len(t, raw, refreshTokenBytes)

	assert.Equal(t, HashRefreshToken(v1), h1)
	assert.Len(t, h1, 64)
}

func TestHashRefreshToken_Known(t *testing.T) {
	assert.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		HashRefreshToken("test"))
}
