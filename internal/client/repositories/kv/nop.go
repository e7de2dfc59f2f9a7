package kv

import (
	"context"
	"time"
)

// Nop is a Store with nowhere to put data. Nothing is retained and nothing
// fails, so callers degrade to "no session" instead of erroring.
type Nop struct{}

var _ Store = Nop{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) Close() error { return nil }
func (n Nop) Update(ctx context.Context, fn func(context.Context, Writer) error) error {
	return fn(ctx, n)
}
