// Package ratelimit provides an in-memory sliding-window attempt
// counter used to throttle brute-force attacks.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts attempts per key within a trailing window. It is safe
// for concurrent use; pruning and the limit decision happen under one
// lock acquisition so no writer can interleave between them.
type Limiter struct {
	maxAttempts int
	window      time.Duration

	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// New creates a Limiter allowing maxAttempts per key within window.
func New(maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// RecordAttempt appends the current timestamp to the key's window.
func (l *Limiter) RecordAttempt(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = append(l.prune(key), l.now())
}

// IsLimited prunes entries older than the window, then reports whether
// the key is over the limit and how many attempts remain.
func (l *Limiter) IsLimited(key string) (limited bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(key)
	if len(kept) == 0 {
		delete(l.attempts, key)
	} else {
		l.attempts[key] = kept
	}

	if len(kept) >= l.maxAttempts {
		return true, 0
	}
	return false, l.maxAttempts - len(kept)
}

// Reset clears the key's window, typically after a successful
// authentication.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// prune returns the key's timestamps still inside the window. Callers
// must hold the lock.
func (l *Limiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	kept := l.attempts[key][:0]
	for _, ts := range l.attempts[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
