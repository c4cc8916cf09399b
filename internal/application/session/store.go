package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("dashboard session not found")

const DefaultIdleTTL = 30 * time.Minute

// Store keeps dashboard sessions in memory and evicts idle ones.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*DashboardSession
	idleTTL  time.Duration
	now      func() time.Time
}

func NewStore(idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		sessions: make(map[string]*DashboardSession),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Get returns an existing session.
func (s *Store) Get(id string) (*DashboardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session with id, creating it when id is empty or
// unknown. Unknown ids get a fresh uuid so clients cannot pick identifiers.
func (s *Store) GetOrCreate(id string) (*DashboardSession, bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := New(uuid.NewString(), s.now())
	s.sessions[sess.ID()] = sess
	return sess, true
}

// All returns every live session in no particular order.
func (s *Store) All() []*DashboardSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*DashboardSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) EvictIdle() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.idleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run evicts idle sessions on every tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}
