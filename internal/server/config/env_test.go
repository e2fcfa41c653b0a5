package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllKinds(t *testing.T) {
	withEnv(t, map[string]string{
		"DAILYDIET_DATABASE_DSN":      "postgres://db",
		"DAILYDIET_REFRESH_TOKEN_TTL": "48h",
		"DAILYDIET_PHOTO_URL_TTL":     "2m",
		"DAILYDIET_REDIS_DB":          "3",
		"DAILYDIET_CORS_ORIGINS":      " , https://x.example ,",
	})

	c := defaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, "postgres://db", c.DatabaseDSN)
	assert.Equal(t, 48*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 2*time.Minute, c.PhotoURLValidityDuration)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, []string{"https://x.example"}, c.CORSOrigins)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	const key = "DAILYDIET_REDIS_PREFIX"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o600))
	t.Setenv(EnvFileEnv, path)

	c := defaults()
	require.NoError(t, parseEnv(c))
	assert.Equal(t, "from-dotenv", c.RedisPrefix)
}

func TestParseEnv_MissingDotEnvIsFine(t *testing.T) {
	withEnv(t, map[string]string{EnvFileEnv: filepath.Join(t.TempDir(), "absent.env")})

	c := defaults()
	assert.NoError(t, parseEnv(c))
}
