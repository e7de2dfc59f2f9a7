// Package config loads runtime configuration for the littleX CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed LITTLEX_ (see parseEnv). A .env file in
//     the working directory is loaded first when present; variables already
//     set in the environment win over it.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the walker API
//	-s string   session store backend: sqlite, redis or none
//	-d string   SQLite database path
//	-r string   Redis address
//	-w int      expiry warning lead time (seconds)
//	-m string   metrics listen address
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "60s" or integer nanoseconds:
//
//	{
//	  "api_url": "https://api.littlex.example",
//	  "store_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "warning_before": "2m",
//	  "request_timeout": "10s"
//	}
//
// Primary API
//
//   - type Config: the resolved settings
//   - func LoadConfig(args) (*Config, error): defaults, env, JSON, then flags
//   - func (*Config) LoadDefaults(): sets sensible defaults
package config
