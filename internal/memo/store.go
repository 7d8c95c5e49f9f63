// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"sync"
	"time"
)

// Entry is a single memoized result.
type Entry struct {
	// Key is the hashed cache key.
	Key string
	// Op is the operation name the entry was computed for. Only used for
	// logging and stats.
	Op string
	// Value is the memoized result. It is opaque to the cache.
	Value any
	// Timestamp is when the entry was created or last refreshed.
	Timestamp time.Time
}

// Fresh reports whether the entry is still inside its ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}

// Store is the session-scoped key/value facility backing a Cache. A Store
// holds at most one Entry per key; Set replaces.
type Store interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry)
	Delete(key string)
	Clear()
	Len() int
}

// MapStore is the default in-memory Store.
type MapStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{entries: make(map[string]Entry)}
}

func (s *MapStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *MapStore) Set(key string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}
	s.entries[key] = e
}

func (s *MapStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MapStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
