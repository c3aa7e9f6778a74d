package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-courier-booking-backend/internal/domain"
)

// MemorySessionStore is the fallback when Redis is not configured.
// Sessions do not survive a process restart, which matches what a
// single-instance dev deployment can promise anyway.
type MemorySessionStore struct {
	verifier *TokenVerifier
	ttl      time.Duration

	mu        sync.RWMutex
	sessions  map[string]memorySession
	listeners []ChangeListener
}

type memorySession struct {
	sess      domain.Session
	expiresAt time.Time
}

func NewMemorySessionStore(verifier *TokenVerifier, ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySessionStore{
		verifier: verifier,
		ttl:      ttl,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Subscribe(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *MemorySessionStore) notify(sid string, sess *domain.Session) {
	s.mu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(sid, sess)
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sid string) (domain.Session, error) {
	if sid == "" {
		return domain.Session{}, ErrNoSession
	}

	s.mu.RLock()
	entry, ok := s.sessions[sid]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return domain.Session{}, ErrNoSession
	}

	sess := entry.sess
	if sess.Expired() {
		return sess, ErrSessionExpired
	}

	if s.verifier != nil {
		sub, err := s.verifier.Verify(sess.AccessToken)
		if err != nil || sub != sess.Subject {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
			return domain.Session{}, ErrNoSession
		}
	}

	return sess, nil
}

func (s *MemorySessionStore) Save(_ context.Context, sess domain.Session) error {
	if sess.ID == "" {
		return errors.New("auth: session ID cannot be empty")
	}

	s.mu.Lock()
	s.sessions[sess.ID] = memorySession{sess: sess, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	s.notify(sess.ID, &sess)
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, sid string) error {
	if sid == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()

	s.notify(sid, nil)
	return nil
}
