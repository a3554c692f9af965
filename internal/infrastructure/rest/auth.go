package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
)

// AuthClient talks to the upstream {base}/auth endpoints.
type AuthClient struct {
	transport
}

var _ ports.Authenticator = (*AuthClient)(nil)

func NewAuthClient(baseURL string, opts ...Option) *AuthClient {
	return &AuthClient{transport: newTransport(baseURL, opts)}
}

// Login posts credentials to /auth/login. A rejection by the service yields an
// error matching domain.ErrAuth that keeps the server's message.
func (a *AuthClient) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var out domain.Session
	err := a.do(ctx, "login", http.MethodPost, a.baseURL+"/auth/login", creds, &out)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && rejected(apiErr.Status) {
			apiErr.Kind = domain.ErrAuth
		}
		return nil, err
	}
	if out.Token == "" || out.Principal == nil {
		return nil, &domain.APIError{
			Op: "login", Method: http.MethodPost, URL: a.baseURL + "/auth/login",
			Status: http.StatusOK, Kind: domain.ErrServer,
			Err: errors.New("login response without token or user"),
		}
	}
	return &out, nil
}

func rejected(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
