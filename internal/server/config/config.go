// Package config handles configuration for the DailyDiet server: defaults,
// an optional JSON file, a .env file plus DAILYDIET_* environment variables,
// and finally command-line flags. Each source overrides the previous one.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/flagx"
)

// ConfigPathEnv names the environment variable consulted when neither -c
// nor -config is given.
const ConfigPathEnv = "DAILYDIET_CONFIG"

// Config holds runtime settings for the DailyDiet server.
//
// An empty DatabaseDSN selects the in-memory store and an empty RedisAddr
// selects the in-process login rate limiter.
type Config struct {
	HTTPAddr string
	Env      string
	LogLevel string

	DatabaseDSN string

	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration

	S3RootUser               string
	S3RootPassword           string
	S3Bucket                 string
	S3Region                 string
	S3BaseEndpoint           string
	PhotoURLValidityDuration time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	CORSOrigins []string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and the S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3333"
	c.Env = "development"
	c.LogLevel = "info"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "meals"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.PhotoURLValidityDuration = 15 * time.Minute
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.RedisDB = 0
	c.RedisPrefix = "dailydiet"
	c.LoginRateLimit = 5
	c.LoginRateWindow = time.Minute
	c.CORSOrigins = []string{"*"}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return fmt.Errorf("http address must be set")
	case c.SecretKey == "":
		return fmt.Errorf("secret key must be set")
	case c.AccessTokenValidityDuration <= 0:
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	case c.RefreshTokenValidityDuration <= 0:
		return fmt.Errorf("refresh token validity must be positive, got %s", c.RefreshTokenValidityDuration)
	case c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0:
		return fmt.Errorf("login rate limit and window must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigPath(args, ConfigPathEnv); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
