package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"songquiz-service/internal/domain"
)

// SessionStore is a Redis implementation of app.SessionRepository.
// Each session is a JSON snapshot under challenge:session:{id}; every save refreshes the TTL,
// so finished results stay readable for ttl after the last action.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, session domain.ChallengeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.ChallengeSession, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ChallengeSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.ChallengeSession{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.ChallengeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.ChallengeSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "challenge:session:" + id
}
