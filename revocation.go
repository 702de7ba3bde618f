package staffdeck

import (
	"context"
	"sync"
)

// RevocationStore tracks tokens invalidated before their natural
// expiry. Logout revokes; authentication checks revocation before the
// signature is even verified.
type RevocationStore interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationStore keeps revoked tokens in process memory.
// Entries are never pruned, so it suits single instance deployments
// with bounded token lifetimes; use the Redis store otherwise.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]struct{}),
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, token string) error {
	if token == "" {
		return ErrNoEmptyString
	}
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	_, ok := s.revoked[token]
	s.mu.RUnlock()
	return ok, nil
}
