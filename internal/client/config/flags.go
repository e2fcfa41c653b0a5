package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags reads the global flags and returns what follows them.
//
// Supported flags:
//
//	-s string   base URL of the server
//	-f string   session file path
//	-t int      request timeout (in seconds)
//	-c, -config JSON config file (consumed by parseJson)
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("dietctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.SessionFile, "f", cfg.SessionFile, "session file path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file (short)")
	fs.StringVar(&ignored, "config", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return fs.Args(), nil
}
