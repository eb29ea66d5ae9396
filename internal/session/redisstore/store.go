package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vector-portal/backend/internal/session"
)

const defaultPrefix = "session:"

// Store is a Redis-backed session store. TTL handling is delegated to Redis:
// keys expire at the session's ExpiresAt.
type Store struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient) *Store {
	return &Store{client: client, prefix: defaultPrefix}
}

func NewWithPrefix(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Save(ctx context.Context, sess session.Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	return s.client.Set(ctx, s.prefix+sess.Token, data, ttl).Err()
}

func (s *Store) Get(ctx context.Context, token string) (session.Session, error) {
	if token == "" {
		return session.Session{}, session.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return session.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, token); err != nil {
			return session.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return session.Session{}, session.ErrSessionNotFound
	}

	return sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.client.Del(ctx, s.prefix+token).Err()
}
