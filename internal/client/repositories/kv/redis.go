package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the client's keys in a shared Redis.
const DefaultRedisPrefix = "littlex:"

// RedisStore keeps entries in Redis and lets Redis enforce the TTL.
type RedisStore struct {
	client *redis.Client // nil when bound to a MULTI/EXEC pipeline
	rdb    redis.Cmdable
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over client. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, rdb: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	exp := time.Duration(ttlMillis(ttl)) * time.Millisecond
	if err := s.rdb.Set(ctx, s.key(key), value, exp).Err(); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// Update queues the writes issued by fn and executes them in one MULTI/EXEC.
// If fn fails nothing is sent.
func (s *RedisStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	if s.client == nil {
		return fn(ctx, s)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(ctx, &RedisStore{rdb: pipe, prefix: s.prefix})
	})
	if err != nil {
		return fmt.Errorf("redis update: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
