package kv

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend     string
	Path        string // sqlite
	RedisAddr   string // redis
	RedisPrefix string // redis
	Clock       clock.Clock
}

// Open returns the Store described by opts. An empty backend selects SQLite.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return OpenSQLite(ctx, opts.Path, opts.Clock)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
