package redis

// Package redis provides Redis-backed adapters for bookly.

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blocklist is a Redis-backed token revocation store for production use.
// Each revoked jti is stored with a TTL matching the token's remaining
// lifetime, so entries evict themselves once the token would have expired
// anyway.
type Blocklist struct {
	client redis.UniversalClient
	prefix string
}

// NewBlocklist creates a new Redis-backed blocklist.
func NewBlocklist(client redis.UniversalClient) *Blocklist {
	return &Blocklist{
		client: client,
		prefix: "token_blocklist:",
	}
}

// NewBlocklistWithPrefix creates a Redis blocklist with a custom key prefix.
func NewBlocklistWithPrefix(client redis.UniversalClient, prefix string) *Blocklist {
	return &Blocklist{
		client: client,
		prefix: prefix,
	}
}

// Add records a revoked token identifier until expiresAt. Re-adding the
// same identifier overwrites the entry, so revocation stays idempotent.
func (b *Blocklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("jti cannot be empty")
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Token is already expired, nothing to block
		return nil
	}

	key := b.prefix + jti
	return b.client.Set(ctx, key, expiresAt.Unix(), ttl).Err()
}

// Contains reports whether the token identifier is currently revoked.
func (b *Blocklist) Contains(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	key := b.prefix + jti
	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}

	return n > 0, nil
}
