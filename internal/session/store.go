package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
)

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	state    *recommendation.State
	created  time.Time
	lastSeen time.Time
}

// Store holds one recommendation state per session. Sessions never share
// state; every access goes through the store lock.
type Store struct {
	mu      sync.Mutex
	tracker *recommendation.Tracker
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*entry
}

func NewStore(tracker *recommendation.Tracker, idleTTL time.Duration) *Store {
	return &Store{
		tracker: tracker,
		ttl:     idleTTL,
		now:     time.Now,
		items:   make(map[string]*entry),
	}
}

// Create starts a new session with a fresh state.
func (s *Store) Create() (string, *recommendation.State) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.insert(id)
	return id, e.state.Clone()
}

// GetOrCreate initializes id only if it is not live yet; an existing session
// keeps its progress. The bool reports whether a new state was created.
func (s *Store) GetOrCreate(id string) (*recommendation.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(id); ok {
		e.lastSeen = s.now()
		return e.state.Clone(), false
	}
	return s.insert(id).state.Clone(), true
}

// Get returns a copy of the session state.
func (s *Store) Get(id string) (*recommendation.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.state.Clone(), nil
}

// Update runs fn against the live session state under the store lock.
func (s *Store) Update(id string, fn func(*recommendation.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return fn(e.state)
}

func (s *Store) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.items {
		if s.expired(e) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Int("live", s.Len()).Msg("expired sessions swept")
			}
		}
	}
}

func (s *Store) insert(id string) *entry {
	now := s.now()
	e := &entry{state: s.tracker.Initialize(), created: now, lastSeen: now}
	s.items[id] = e
	return e
}

func (s *Store) live(id string) (*entry, bool) {
	e, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.items, id)
		return nil, false
	}
	return e, true
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
