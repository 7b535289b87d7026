package revocation

import (
	"context"
	"sync"
	"time"
)

// Clock lets tests control expiry.
type Clock func() time.Time

// InMemory keeps revoked JTIs in a map. Entries past their expiry are treated
// as not revoked and pruned lazily.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   Clock
}

type InMemoryOption func(*InMemory)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) InMemoryOption {
	return func(s *InMemory) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = s.clock().Add(ttl)
	return nil
}

func (s *InMemory) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, exists := s.entries[jti]
	if !exists {
		return false, nil
	}
	if s.clock().After(expiresAt) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}
