package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the rate limiting interface
type Limiter interface {
	// Allow checks if the action is allowed for the given key
	// Returns true if allowed, false if rate limited
	Allow(key string, limit int, window time.Duration) bool

	// Remaining returns the number of remaining requests for the key
	Remaining(key string, limit int, window time.Duration) int

	// RetryAfter returns the duration until the rate limit resets
	RetryAfter(key string, window time.Duration) time.Duration
}

// MemoryLimiter is an in-memory rate limiter implementation
type MemoryLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count     int
	resetTime time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

// NewMemoryLimiterWithClock creates a limiter that reads time from now.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

func (l *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]

	if !ok || now.After(b.resetTime) {
		l.buckets[key] = &bucket{
			count:     1,
			resetTime: now.Add(window),
		}
		return true
	}

	if b.count >= limit {
		return false
	}

	b.count++
	return true
}

func (l *MemoryLimiter) Remaining(key string, limit int, window time.Duration) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now()
	b, ok := l.buckets[key]

	if !ok || now.After(b.resetTime) {
		return limit
	}

	remaining := limit - b.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *MemoryLimiter) RetryAfter(key string, window time.Duration) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now()
	b, ok := l.buckets[key]

	if !ok || now.After(b.resetTime) {
		return 0
	}

	return b.resetTime.Sub(now)
}

// Cleanup removes expired buckets to prevent memory leaks
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.After(b.resetTime) {
			delete(l.buckets, key)
		}
	}
}

// StartCleanup periodically removes expired buckets until ctx is done.
func (l *MemoryLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// Len reports how many buckets are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Ensure MemoryLimiter implements Limiter
var _ Limiter = (*MemoryLimiter)(nil)
