// Package cache is a small in-process TTL cache used for provider
// responses that are safe to reuse within a cycle (standings, player
// profiles).
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/fantrax-team-manager/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
}

type Store struct {
	ttl    time.Duration
	now    func() time.Time
	flight *resilience.SingleFlight

	mu      sync.RWMutex
	entries map[string]entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		flight:  resilience.NewSingleFlight(),
		entries: make(map[string]entry),
	}
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the cached value for key, loading it at most once
// across concurrent callers on a miss. Load errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	if value, ok := s.Get(key); ok {
		return value, nil
	}

	value, _, err := s.flight.Do(key, func() (any, error) {
		if value, ok := s.Get(key); ok {
			return value, nil
		}
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, value)
		return value, nil
	})
	return value, err
}
