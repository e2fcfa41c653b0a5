package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-l", "-redis"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      HTTP bind address (e.g., ":3333")
//	-d string      PostgreSQL DSN; empty selects the in-memory store
//	-s string      JWT HMAC secret key
//	-t int         access token validity, minutes
//	-r int         refresh token validity, minutes
//	-u string      S3 root user
//	-p string      S3 root password
//	-b string      S3 bucket name
//	-g string      S3 region
//	-e string      S3 base endpoint
//	-l string      log level (debug|info|warn|error)
//	-redis string  Redis address for the login rate limiter
//
// args is filtered with flagx.FilterArgs first so flags meant for other
// components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only touch durations that were given, so sub-minute values from other
	// sources survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		}
	})
	return nil
}
