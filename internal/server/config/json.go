package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// strings such as "15m" and integer nanoseconds. Zero values leave the
// current setting untouched.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	Env                          string         `json:"env"`
	LogLevel                     string         `json:"log_level"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	PhotoURLValidityDuration     timex.Duration `json:"photo_url_validity_duration"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	RedisPrefix                  string         `json:"redis_prefix"`
	LoginRateLimit               int            `json:"login_rate_limit"`
	LoginRateWindow              timex.Duration `json:"login_rate_window"`
	CORSOrigins                  []string       `json:"cors_origins"`
}

// parseJson overlays the JSON file at path onto config.
func parseJson(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.Env, c.Env)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PhotoURLValidityDuration, c.PhotoURLValidityDuration)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	setString(&config.RedisPrefix, c.RedisPrefix)
	if c.LoginRateLimit != 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	setDuration(&config.LoginRateWindow, c.LoginRateWindow)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
