package service

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/pkg/metrics"
)

// SessionManager hands out the SessionStore of a browser session id.
//
// Only sessions holding a principal are kept in memory, so every request and
// subscriber of a logged-in session observes the same current user. Anonymous
// sessions get a fresh store per request: it is retained once Login succeeds
// and released again on Logout.
type SessionManager struct {
	kv   ports.KeyValueOpener
	auth ports.Authenticator
	log  zerolog.Logger
	opts []StoreOption

	mu     sync.Mutex
	stores map[string]*SessionStore
}

func NewSessionManager(kv ports.KeyValueOpener, auth ports.Authenticator, log zerolog.Logger, opts ...StoreOption) *SessionManager {
	return &SessionManager{
		kv:     kv,
		auth:   auth,
		log:    log,
		opts:   opts,
		stores: make(map[string]*SessionStore),
	}
}

// Open returns the store of session sid, restoring it from the persisted keys
// when it is not held yet.
func (m *SessionManager) Open(ctx context.Context, sid string) (*SessionStore, error) {
	m.mu.Lock()
	s, ok := m.stores[sid]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	opts := slices.Concat(m.opts, []StoreOption{m.tracker(sid)})
	s, err := NewSessionStore(ctx, m.kv.Open(sid), m.auth, m.log.With().Str("session_id", sid).Logger(), opts...)
	if err != nil {
		return nil, err
	}
	if s.CurrentUser() == nil {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if held, ok := m.stores[sid]; ok {
		return held, nil
	}
	m.stores[sid] = s
	metrics.SessionsOpen.Inc()
	return s, nil
}

func (m *SessionManager) tracker(sid string) StoreOption {
	return func(s *SessionStore) {
		s.track = func(s *SessionStore, authenticated bool) {
			m.mu.Lock()
			defer m.mu.Unlock()
			held, ok := m.stores[sid]
			switch {
			case authenticated:
				if !ok {
					metrics.SessionsOpen.Inc()
				}
				m.stores[sid] = s
			case ok && held == s:
				delete(m.stores, sid)
				metrics.SessionsOpen.Dec()
			}
		}
	}
}

// Ping checks the session backend.
func (m *SessionManager) Ping(ctx context.Context) error {
	return m.kv.Ping(ctx)
}
