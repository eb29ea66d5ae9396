package session

import (
	"context"
	"errors"
	"time"

	"github.com/vector-portal/backend/internal/common/clock"
	commoncrypto "github.com/vector-portal/backend/internal/common/crypto"
	"github.com/vector-portal/backend/internal/common/logger"
	"github.com/vector-portal/backend/internal/observability/metrics"
)

// Manager owns the per-client authentication state machine. Every context
// starts Anonymous; Establish moves it to Authenticated, Clear (or store
// expiry) moves it back. There is no terminal state.
type Manager struct {
	store       Store
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	ttl         time.Duration
	log         *logger.Logger
}

func NewManager(
	store Store,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	ttl time.Duration,
	log *logger.Logger,
) *Manager {
	return &Manager{
		store:       store,
		idGenerator: idGenerator,
		clock:       clk,
		ttl:         ttl,
		log:         log,
	}
}

// Establish transitions a client context to Authenticated and returns the
// session carrying its opaque token.
func (m *Manager) Establish(ctx context.Context, userID, username string) (Session, error) {
	token, err := m.idGenerator.NewID()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		ExpiresAt: m.clock.Now().Add(m.ttl),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "session_save_failed",
		}).Errorf("failed to save session: %v", err)
		return Session{}, err
	}

	metrics.SessionsEstablished.Inc()
	m.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "session_established",
	}).Info("session established")

	return sess, nil
}

// Resolve returns the Principal bound to the token. A missing, expired, or
// empty token resolves to Anonymous with a nil error; the state machine
// treats all three identically.
func (m *Manager) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Anonymous{}, nil
	}

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Anonymous{}, nil
		}
		return Anonymous{}, err
	}

	return sess, nil
}

// Authorize gates protected access: it fails with ErrNotAuthenticated unless
// the token resolves to an Authenticated session.
func (m *Manager) Authorize(ctx context.Context, token string) (Session, error) {
	principal, err := m.Resolve(ctx, token)
	if err != nil {
		return Session{}, err
	}

	sess, ok := principal.(Session)
	if !ok || !principal.IsAuthenticated() {
		metrics.AuthorizationsDenied.Inc()
		return Session{}, ErrNotAuthenticated
	}

	return sess, nil
}

// Clear transitions the context back to Anonymous. Clearing an unknown or
// already-cleared token is not an error.
func (m *Manager) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := m.store.Delete(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		m.log.WithFields(ctx, logger.Fields{
			"action": "session_clear_failed",
		}).Errorf("failed to clear session: %v", err)
		return err
	}

	metrics.SessionsCleared.Inc()
	m.log.WithFields(ctx, logger.Fields{
		"action": "session_cleared",
	}).Info("session cleared")

	return nil
}
