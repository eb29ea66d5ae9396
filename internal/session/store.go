package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vector-portal/backend/internal/common/clock"
	"github.com/vector-portal/backend/internal/common/constants"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions between requests. Expiry is the store's concern:
// Get never returns a session past its ExpiresAt.
type Store interface {
	Save(ctx context.Context, sess Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	clock    clock.Clock
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
		clock:    clk,
		stop:     make(chan struct{}),
	}
	go s.sweep(constants.SessionSweepInterval)
	return s
}

func (s *MemoryStore) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}

	if s.clock.Now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}

	return sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := s.clock.Now()
			s.mu.Lock()
			for token, sess := range s.sessions {
				if now.After(sess.ExpiresAt) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
