package bookly

import (
	"context"
	"sync"
	"time"
)

// TokenBlocklist records revoked token identifiers until their natural
// expiry. Implementations must be safe for concurrent use.
type TokenBlocklist interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// MemoryBlocklist is an in-process TokenBlocklist. It covers single node
// deployments and tests; shared deployments use the redis adapter.
type MemoryBlocklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryBlocklist creates an empty in-memory blocklist
func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{
		entries: make(map[string]time.Time),
	}
}

// Add records a token identifier until expiresAt. Adding an identifier
// that is already present is a no-op, so revocation is idempotent.
func (b *MemoryBlocklist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrTokenInvalid
	}

	// nothing to revoke, the token can no longer pass the expiry check
	if !expiresAt.After(time.Now()) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.entries[jti]; ok && current.After(expiresAt) {
		return nil
	}
	b.entries[jti] = expiresAt

	return nil
}

// Contains reports whether the identifier is currently revoked. Expired
// entries are pruned lazily as they are looked up.
func (b *MemoryBlocklist) Contains(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[jti]
	b.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if !expiresAt.After(time.Now()) {
		b.mu.Lock()
		delete(b.entries, jti)
		b.mu.Unlock()
		return false, nil
	}

	return true, nil
}
