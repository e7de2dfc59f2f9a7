package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/littlex/internal/flagx"
)

var knownFlags = []string{"-a", "-s", "-d", "-r", "-w", "-m", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the walker API
//	-s string   session store backend: sqlite, redis or none
//	-d string   SQLite database path
//	-r string   Redis address
//	-w int      expiry warning lead time (in seconds)
//	-m string   metrics listen address
//	-l string   log level
//
// Note: args are filtered to the flags above with flagx.FilterArgs, so flags
// owned by other stages (such as -c) do not cause errors.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("littlex", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "base URL of the walker API")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "session store backend (sqlite, redis, none)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	warning := fs.Int("w", int(cfg.WarningBefore.Seconds()), "expiry warning lead time (in seconds)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	cfg.WarningBefore = time.Duration(*warning) * time.Second
	return nil
}
