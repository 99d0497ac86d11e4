package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens    int
	updatedAt time.Time
}

// MemoryStore keeps buckets in process memory. Suitable for single-instance
// deployments and tests; buckets for idle keys are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock creates a store with an injected clock for tests.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, cfg Config) (int, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, updatedAt: now}
		s.buckets[key] = b
	}

	// Refill in whole intervals so partial elapsed time carries over.
	if elapsed := now.Sub(b.updatedAt); elapsed >= cfg.RefillInterval {
		intervals := int(elapsed / cfg.RefillInterval)
		b.tokens = min(cfg.Capacity, b.tokens+intervals*cfg.RefillRate)
		b.updatedAt = b.updatedAt.Add(time.Duration(intervals) * cfg.RefillInterval)
	}

	allowed := b.tokens >= n
	if allowed {
		b.tokens -= n
	}
	return b.tokens, b.updatedAt.Add(cfg.RefillInterval), allowed, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}
