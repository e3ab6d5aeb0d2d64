// Package publish writes the ranked snapshot to the serving store on the
// serving cadence.
package publish

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store is the external serving-layer boundary. Writes overwrite the
// previous value under the same key; consumers keep seeing the last
// successful write during an outage.
type Store interface {
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type redisStore struct {
	c *redis.Client
}

// NewRedisStore connects a store to redis.
func NewRedisStore(addr string, db int) Store {
	return &redisStore{c: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (r *redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.c.Set(ctx, key, val, ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return r.c.Get(ctx, key).Bytes()
}

// MemoryStore is an in-process Store for offline scans and tests.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), val...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, redis.Nil
	}
	return append([]byte(nil), v...), nil
}
