package ports

import (
	"context"

	"github.com/mboutique/backoffice/internal/core/domain"
)

// CallOptions holds per-call overrides of an entity client.
type CallOptions struct {
	// Path replaces the collection path the client was bound to.
	Path string
}

type CallOption func(*CallOptions)

// AtPath addresses a single call to another collection path.
func AtPath(path string) CallOption {
	return func(o *CallOptions) { o.Path = path }
}

// EntityClient is the generic REST contract every CRUD screen is built on.
type EntityClient[T any] interface {
	ListAll(ctx context.Context, p *domain.Pagination, opts ...CallOption) ([]T, error)
	ListPaginated(ctx context.Context, p *domain.Pagination, opts ...CallOption) (*domain.Page[T], error)
	GetByID(ctx context.Context, id string, opts ...CallOption) (T, error)
	Create(ctx context.Context, partial T, opts ...CallOption) (T, error)
	Update(ctx context.Context, id string, partial T, opts ...CallOption) (T, error)
	Delete(ctx context.Context, id string, opts ...CallOption) error
	Search(ctx context.Context, query string, p *domain.Pagination, opts ...CallOption) ([]T, error)
}
