package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the littleX CLI.
//
// Fields:
//   - APIURL: base URL of the walker API.
//   - StoreBackend: where the session is kept: "sqlite", "redis" or "none".
//   - DBPath: SQLite database file (sqlite backend).
//   - RedisAddr, RedisPrefix: Redis server and key namespace (redis backend).
//   - WarningBefore: how long before expiry the "expiring soon" notice fires.
//   - RequestTimeout: upper bound for a single API call.
//   - NoticeLogCap: number of notices kept in the notification log.
//   - MetricsAddr: listen address for /metrics; empty disables metrics.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIURL         string
	StoreBackend   string
	DBPath         string
	RedisAddr      string
	RedisPrefix    string
	WarningBefore  time.Duration
	RequestTimeout time.Duration
	NoticeLogCap   int
	MetricsAddr    string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8000"
	c.StoreBackend = "sqlite"
	c.DBPath = "littlex.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "littlex:"
	c.WarningBefore = 60 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.NoticeLogCap = 50
	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and a .env file, if present), a JSON file (if given with
// -c/-config) and command-line flags. Later sources take precedence over
// earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
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

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "sqlite", "redis", "none":
	default:
		return fmt.Errorf("invalid store backend %q: want sqlite, redis or none", c.StoreBackend)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.WarningBefore <= 0 {
		return fmt.Errorf("invalid warning interval %s: must be positive", c.WarningBefore)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s: must be positive", c.RequestTimeout)
	}
	if c.NoticeLogCap <= 0 {
		return fmt.Errorf("invalid notice log cap %d: must be positive", c.NoticeLogCap)
	}
	return nil
}
