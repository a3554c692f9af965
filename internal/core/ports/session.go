package ports

import (
	"context"

	"github.com/mboutique/backoffice/internal/core/domain"
)

// KeyValueStore is the durable storage scope of one browser session.
// Get reports ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// KeyValueOpener returns the storage scope for a session id.
type KeyValueOpener interface {
	Open(sessionID string) KeyValueStore
	Ping(ctx context.Context) error
}

// Authenticator exchanges credentials for a session with the remote service.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
}

// Navigator performs a client navigation to an absolute application path.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }
