package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/flagx"
)

// ConfigPathEnv names the environment variable consulted when neither -c
// nor -config is given.
const ConfigPathEnv = "DIETCTL_CONFIG"

// Config holds runtime settings for dietctl.
//
// Fields:
//   - ServerURL: base URL of the DailyDiet API.
//   - SessionFile: where the token pair is kept between runs.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	SessionFile    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3333"
	c.SessionFile = defaultSessionFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dietctl-session.json"
	}
	return filepath.Join(home, ".dailydiet", "session.json")
}

// LoadConfig applies defaults, then the JSON file (if any), then the global
// flags found at the front of args. It returns the remaining arguments,
// which name the command to run.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, flagx.ConfigPath(args, ConfigPathEnv)); err != nil {
		return nil, nil, err
	}

	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
