// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package session tracks interactive sessions. Each session owns its own
// memo cache, which is discarded when the session ends.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/clientdash/internal/access"
	"github.com/staranto/clientdash/internal/memo"
)

// ErrNoSession is returned for unknown or ended sessions.
var ErrNoSession = errors.New("no such session")

// Session is one logged in user's state.
type Session struct {
	ID      string
	User    access.User
	Cache   *memo.Cache
	Created time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen is the time of the most recent Get.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// CacheOptions are applied to every new session cache.
	CacheOptions []memo.Option
	Now          func() time.Time
	// OnEnd, when set, is called after a session ends.
	OnEnd func(*Session)
}

func NewManager(opts ...memo.Option) *Manager {
	return &Manager{
		sessions:     map[string]*Session{},
		CacheOptions: opts,
		Now:          time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Start creates a session for user.
func (m *Manager) Start(user access.User) *Session {
	now := m.now()
	s := &Session{
		ID:       uuid.NewString(),
		User:     user,
		Cache:    memo.New(m.CacheOptions...),
		Created:  now,
		lastSeen: now,
	}

	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = map[string]*Session{}
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.WithField("user", user.Name).WithField("session", s.ID).Info("session started")
	return s
}

// Get returns the session and marks it as seen.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}
	s.touch(m.now())
	return s, nil
}

// End clears the session's cache and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	s.Cache.Clear()
	log.WithField("user", s.User.Name).WithField("session", id).Info("session ended")
	if m.OnEnd != nil {
		m.OnEnd(s)
	}
	return nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// IDs returns the live session ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Sweep ends sessions not seen for idle or longer and returns how many.
func (m *Manager) Sweep(idle time.Duration) int {
	now := m.now()

	var stale []string
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) >= idle {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	n := 0
	for _, id := range stale {
		if m.End(id) == nil {
			n++
		}
	}
	if n > 0 {
		log.Debugf("swept %d idle session(s)", n)
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(idle)
		}
	}
}
