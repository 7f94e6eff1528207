package util

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged out token ids until the tokens would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// CheckRevoked returns ErrRevokedToken when info's token was logged out.
func CheckRevoked(ctx context.Context, r Revoker, info TokenInfo) error {
	revoked, err := r.IsRevoked(ctx, info.JTI)
	if err != nil {
		return err
	}
	if revoked {
		return ErrRevokedToken
	}
	return nil
}

// MemoryRevoker keeps revoked ids in process memory. Good for a single
// instance and for tests.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time)}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, until := range m.entries {
		if now.After(until) {
			delete(m.entries, id)
		}
	}
	m.entries[jti] = now.Add(ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// RedisRevoker shares revoked ids between instances through redis keys that
// expire together with the token.
type RedisRevoker struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisRevoker(client *redis.Client, keyPrefix string) *RedisRevoker {
	return &RedisRevoker{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
