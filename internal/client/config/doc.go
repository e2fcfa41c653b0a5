// Package config loads runtime configuration for dietctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or DIETCTL_CONFIG.
//  3. Global command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3333",
//	  "session_file": "/home/me/.dailydiet/session.json",
//	  "request_timeout": "10s"
//	}
package config
