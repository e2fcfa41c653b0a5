package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvFileEnv points at an alternative .env file.
const EnvFileEnv = "DAILYDIET_ENV_FILE"

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// loadDotEnv loads the .env file into the process environment without
// overriding variables that are already set. A missing file is fine.
func loadDotEnv() error {
	path := ".env"
	if p, ok := lookupEnv(EnvFileEnv); ok && p != "" {
		path = p
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays DAILYDIET_* environment variables onto config.
func parseEnv(config *Config) error {
	if err := loadDotEnv(); err != nil {
		return err
	}

	strs := map[string]*string{
		"DAILYDIET_HTTP_ADDR":      &config.HTTPAddr,
		"DAILYDIET_ENV":            &config.Env,
		"DAILYDIET_LOG_LEVEL":      &config.LogLevel,
		"DAILYDIET_DATABASE_DSN":   &config.DatabaseDSN,
		"DAILYDIET_SECRET_KEY":     &config.SecretKey,
		"DAILYDIET_S3_ROOT_USER":   &config.S3RootUser,
		"DAILYDIET_S3_ROOT_PASS":   &config.S3RootPassword,
		"DAILYDIET_S3_BUCKET":      &config.S3Bucket,
		"DAILYDIET_S3_REGION":      &config.S3Region,
		"DAILYDIET_S3_ENDPOINT":    &config.S3BaseEndpoint,
		"DAILYDIET_REDIS_ADDR":     &config.RedisAddr,
		"DAILYDIET_REDIS_PASSWORD": &config.RedisPassword,
		"DAILYDIET_REDIS_PREFIX":   &config.RedisPrefix,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"DAILYDIET_ACCESS_TOKEN_TTL":  &config.AccessTokenValidityDuration,
		"DAILYDIET_REFRESH_TOKEN_TTL": &config.RefreshTokenValidityDuration,
		"DAILYDIET_PHOTO_URL_TTL":     &config.PhotoURLValidityDuration,
		"DAILYDIET_LOGIN_RATE_WINDOW": &config.LoginRateWindow,
	}
	for key, dst := range durations {
		v, ok := lookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"DAILYDIET_REDIS_DB":         &config.RedisDB,
		"DAILYDIET_LOGIN_RATE_LIMIT": &config.LoginRateLimit,
	}
	for key, dst := range ints {
		v, ok := lookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := lookupEnv("DAILYDIET_CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
