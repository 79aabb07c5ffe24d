package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryBucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps bucket state in process memory. Suitable for a single
// instance; use RedisStore when multiple instances share a limit.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale buckets are evicted.
// Zero disables the background sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.cleanupInterval = interval }
}

// NewMemoryStore returns a MemoryStore with a background sweep of buckets
// untouched for over an hour.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets:         make(map[string]*memoryBucket),
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cleanupInterval > 0 {
		go s.sweep()
	}
	return s
}

func (s *MemoryStore) Take(ctx context.Context, key string, n int, limit Limit) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	b, ok := s.buckets[key]
	if !ok {
		b = &memoryBucket{tokens: limit.Capacity, lastRefill: now}
		s.buckets[key] = b
	}

	// Cap elapsed intervals so a long-idle bucket cannot overflow the math.
	elapsed := now.Sub(b.lastRefill)
	maxIntervals := int64(limit.Capacity/limit.RefillRate + 1)
	intervals := int(min(int64(elapsed/limit.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*limit.RefillRate, limit.Capacity)
		b.lastRefill = now
	}

	b.lastAccess = now
	resetAt := b.lastRefill.Add(limit.RefillInterval)

	// Denial must not consume: a bucket driven below zero would owe token
	// debt and a retrying client could never recover.
	if b.tokens < n {
		return b.tokens - n, resetAt, nil
	}
	b.tokens -= n

	return b.tokens, resetAt, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Close stops the background sweep. Safe for repeated calls.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictStale()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) evictStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for key, b := range s.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
}
