// Package ratelimit provides a simple per-key minimum-interval rate limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a minimum interval between events for each key. Keys are
// arbitrary strings; the HTTP layer uses client addresses for login and
// signup throttling.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

// New creates a limiter with the given minimum interval between events
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether an event for key may proceed now. A denied event
// does not update the key's timestamp, so the original interval keeps
// counting down.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	last, ok := l.hosts[key]
	if ok && now.Sub(last) < l.minInterval {
		return false
	}

	l.hosts[key] = now
	return true
}

// Wait blocks until the key's interval has elapsed, then records the event
func (l *Limiter) Wait(key string) {
	l.mu.Lock()
	now := time.Now()
	last, ok := l.hosts[key]
	if !ok || now.Sub(last) >= l.minInterval {
		l.hosts[key] = now
		l.mu.Unlock()
		return
	}

	wait := l.minInterval - now.Sub(last)
	l.hosts[key] = last.Add(l.minInterval)
	l.mu.Unlock()

	time.Sleep(wait)
}

// Reset clears the recorded timestamp for a key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, key)
}

// ResetAll clears all recorded timestamps
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = make(map[string]time.Time)
}
