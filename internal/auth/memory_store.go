package auth

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps sessions in an in-process map. Sessions do not survive
// a restart, which matches the portal's requirements.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]Session)}
}

// Save stores the session under its token hash.
func (s *InMemoryStore) Save(_ context.Context, session Session, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[tokenHash] = session
	return nil
}

// FindByTokenHash returns the stored session, or nil when unknown.
func (s *InMemoryStore) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[tokenHash]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DeleteByTokenHash removes the session, if present.
func (s *InMemoryStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, tokenHash)
	return nil
}

// DeleteExpired removes every session past its expiry and reports the count.
func (s *InMemoryStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for hash, session := range s.data {
		if now.After(session.ExpiresAt) {
			delete(s.data, hash)
			removed++
		}
	}
	return removed, nil
}
