package kv

import (
	"context"
	"time"
)

// Writer is the write half of a Store. Inside Update it is bound to the
// batch being built.
type Writer interface {
	// Set stores value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store is key/value persistence with per-entry time-to-live.
type Store interface {
	Writer

	// Get returns the value for key, or (nil, nil) when the key is missing or
	// its TTL has elapsed. An elapsed entry is deleted as part of the read.
	Get(ctx context.Context, key string) ([]byte, error)

	// Update applies every write issued by fn together, or none of them when
	// fn returns an error.
	Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error

	Close() error
}

// ttlMillis converts a TTL to whole milliseconds, rounding positive values up
// so a sub-millisecond TTL never turns into "no expiry".
func ttlMillis(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	ms := ttl.Milliseconds()
	if time.Duration(ms)*time.Millisecond < ttl {
		ms++
	}
	return ms
}
