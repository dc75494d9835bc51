package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"songquiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions expire ttl after their last save; a non-positive ttl keeps them forever.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]storedSession
}

type storedSession struct {
	session   domain.ChallengeSession
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows deterministic expiry in tests.
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Save(_ context.Context, session domain.ChallengeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweepLocked(now)
	s.sessions[session.ID] = storedSession{session: session, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.ChallengeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[id]
	if !ok || s.expired(stored, s.clock()) {
		return domain.ChallengeSession{}, domain.ErrSessionNotFound
	}
	session := stored.session
	session.Scores = slices.Clone(session.Scores)
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) expired(stored storedSession, now time.Time) bool {
	return s.ttl > 0 && !stored.expiresAt.After(now)
}

func (s *SessionStore) sweepLocked(now time.Time) {
	for id, stored := range s.sessions {
		if s.expired(stored, now) {
			delete(s.sessions, id)
		}
	}
}
