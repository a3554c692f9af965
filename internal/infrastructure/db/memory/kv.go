// Package memory holds the process-local session backend used in development
// and tests.
package memory

import (
	"context"
	"sync"

	"github.com/mboutique/backoffice/internal/core/ports"
)

// SessionKV keeps every session scope in one mutex-guarded map.
type SessionKV struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

var _ ports.KeyValueOpener = (*SessionKV)(nil)

func NewSessionKV() *SessionKV {
	return &SessionKV{data: make(map[string]map[string]string)}
}

func (s *SessionKV) Open(sessionID string) ports.KeyValueStore {
	return &scope{parent: s, id: sessionID}
}

func (s *SessionKV) Ping(context.Context) error { return nil }

type scope struct {
	parent *SessionKV
	id     string
}

func (s *scope) Get(_ context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.data[s.id][key]
	return v, ok, nil
}

func (s *scope) Set(_ context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	m := s.parent.data[s.id]
	if m == nil {
		m = make(map[string]string)
		s.parent.data[s.id] = m
	}
	m[key] = value
	return nil
}

func (s *scope) Delete(_ context.Context, keys ...string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	m := s.parent.data[s.id]
	for _, k := range keys {
		delete(m, k)
	}
	if len(m) == 0 {
		delete(s.parent.data, s.id)
	}
	return nil
}
