package session

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenStore is an in-process [TokenStore] honoring the token TTL.
type MemoryTokenStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryTokenStore returns an empty in-process store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

// WithClock replaces the time source. Used by tests to expire tokens.
func (s *MemoryTokenStore) WithClock(now func() time.Time) *MemoryTokenStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
	return s
}

// Get returns the token, or ErrTokenNotFound when absent or expired.
func (s *MemoryTokenStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", ErrTokenNotFound
	}
	if !s.now().Before(s.expiresAt) {
		s.token = ""
		return "", ErrTokenNotFound
	}
	return s.token, nil
}

// Set stores token until ttl elapses; a non-positive ttl means DefaultTokenTTL.
func (s *MemoryTokenStore) Set(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = s.now().Add(ttl)
	return nil
}

// Delete removes the token. Deleting an absent token is not an error.
func (s *MemoryTokenStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}
