// Package session keeps per-visitor state in memory and drops it after a
// period of inactivity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 30 * time.Minute

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Store maps session ids to values of type T. Every Get or GetOrCreate
// refreshes the entry's idle timer.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	ttl     time.Duration
	newFn   func() T
	now     func() time.Time
}

// Option tweaks a Store.
type Option[T any] func(*Store[T])

// WithClock overrides time.Now, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

// NewStore builds a store whose missing entries are created by newFn.
func NewStore[T any](ttl time.Duration, newFn func() T, opts ...Option[T]) *Store[T] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		newFn:   newFn,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a random session identifier.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// GetOrCreate returns the value for id. When id is empty, unknown or expired
// a new value is stored under a freshly minted id, so callers never choose
// their own ids. The returned id is the one the value is stored under.
func (s *Store[T]) GetOrCreate(id string) (string, T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[id]; ok && id != "" && now.Sub(e.lastSeen) < s.ttl {
		e.lastSeen = now
		return id, e.value
	}
	if _, stale := s.entries[id]; stale {
		delete(s.entries, id)
	}
	id = NewID()
	e := &entry[T]{value: s.newFn(), lastSeen: now}
	s.entries[id] = e
	return id, e.value
}

// Get returns the live value for id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.now().Sub(e.lastSeen) >= s.ttl {
		var zero T
		return zero, false
	}
	e.lastSeen = s.now()
	return e.value, true
}

func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len counts stored entries, expired ones included until the next sweep.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes entries idle for at least the TTL and reports how many went.
func (s *Store[T]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}
