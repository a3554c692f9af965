package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/pkg/metrics"
)

// Persisted keys of a browser session.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// SessionStore holds the authenticated principal and token of one browser
// session and broadcasts current-user changes to its subscribers.
type SessionStore struct {
	kv   ports.KeyValueStore
	auth ports.Authenticator
	now  func() time.Time
	log  zerolog.Logger

	// track is told when the session gains or loses its principal.
	track func(s *SessionStore, authenticated bool)

	mu      sync.Mutex
	current *domain.Principal
	subs    map[int]chan *domain.Principal
	nextSub int
}

// StoreOption customises a SessionStore.
type StoreOption func(*SessionStore)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore restores the persisted principal from kv, if any. A stored
// principal that cannot be decoded is discarded.
func NewSessionStore(ctx context.Context, kv ports.KeyValueStore, auth ports.Authenticator, log zerolog.Logger, opts ...StoreOption) (*SessionStore, error) {
	s := &SessionStore{
		kv:   kv,
		auth: auth,
		now:  time.Now,
		log:  log,
		subs: make(map[int]chan *domain.Principal),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := kv.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if ok {
		var p domain.Principal
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.log.Warn().Err(err).Msg("discarding unreadable stored user")
		} else {
			s.current = &p
		}
	}
	return s, nil
}

// Login authenticates against the remote service, persists token and
// principal, and publishes the new current user.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	session, err := s.auth.Login(ctx, creds)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrAuth) {
			result = "rejected"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return nil, err
	}

	user, err := json.Marshal(session.Principal)
	if err != nil {
		return nil, fmt.Errorf("login: encode user: %w", err)
	}
	if err := s.kv.Set(ctx, TokenKey, session.Token); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(user)); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", session.Principal.ID).Str("role", string(session.Principal.Role)).Msg("login")
	s.publish(session.Principal)
	if s.track != nil {
		s.track(s, true)
	}
	return session, nil
}

// Logout clears the persisted session and publishes a nil current user.
// Redirecting to the login entry point is the caller's job.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("logout")
	s.publish(nil)
	if s.track != nil {
		s.track(s, false)
	}
	return nil
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	token, _, err := s.kv.Get(ctx, TokenKey)
	return token, err
}

// IsAuthenticated reports whether a token is stored and its exp claim lies
// strictly in the future. Unreadable storage counts as unauthenticated.
func (s *SessionStore) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("token lookup failed")
		return false
	}
	if token == "" {
		return false
	}
	return !TokenExpired(token, s.now())
}

// CurrentUser returns the last known principal without revalidating expiry.
func (s *SessionStore) CurrentUser() *domain.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// HasRole reports whether the current principal has role.
func (s *SessionStore) HasRole(role domain.Role) bool {
	u := s.CurrentUser()
	return u != nil && u.Role == role
}

// Subscribe returns a channel that immediately carries the current user and
// then every change. Only the newest undelivered value is kept. The channel is
// closed when ctx ends.
func (s *SessionStore) Subscribe(ctx context.Context) <-chan *domain.Principal {
	ch := make(chan *domain.Principal, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.current
	s.mu.Unlock()
	metrics.SessionSubscribers.Inc()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
		metrics.SessionSubscribers.Dec()
	}()
	return ch
}

func (s *SessionStore) publish(p *domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	for _, ch := range s.subs {
		// Replace a value the subscriber has not consumed yet.
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}

// TokenExpired decodes the token payload without verifying its signature and
// reports whether exp is at or before now. Malformed tokens and tokens without
// exp are expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}
