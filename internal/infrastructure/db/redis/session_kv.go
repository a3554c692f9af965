package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mboutique/backoffice/internal/core/ports"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// SessionKV opens per-session key-value scopes in Redis.
// Key format: session:<session_id>:<key>
type SessionKV struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.KeyValueOpener = (*SessionKV)(nil)

// NewSessionKV wraps client. Keys expire ttl after their last write.
func NewSessionKV(client *redis.Client, ttl time.Duration) *SessionKV {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionKV{client: client, ttl: ttl}
}

func (s *SessionKV) Open(sessionID string) ports.KeyValueStore {
	return &sessionScope{parent: s, id: sessionID}
}

func (s *SessionKV) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type sessionScope struct {
	parent *SessionKV
	id     string
}

func (s *sessionScope) key(k string) string {
	return fmt.Sprintf("session:%s:%s", s.id, k)
}

func (s *sessionScope) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.parent.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *sessionScope) Set(ctx context.Context, key, value string) error {
	if err := s.parent.client.Set(ctx, s.key(key), value, s.parent.ttl).Err(); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *sessionScope) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.parent.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
