package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/mboutique/backoffice/internal/core/service"
	"github.com/mboutique/backoffice/internal/infrastructure/rest"
)

const (
	// SessionCookie carries the opaque browser session id.
	SessionCookie = "sid"

	storeKey  = "session_store"
	configKey = "session_config"
)

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	// Skipper bypasses session resolution, e.g. for static assets.
	Skipper      echomiddleware.Skipper
	Manager      *service.SessionManager
	CookieSecure bool
	TTL          time.Duration
}

// Session resolves the browser session from its cookie, issuing a fresh id
// when the cookie is missing or malformed, and injects the store into the echo
// context. A stored token is attached to the request context so upstream
// calls made while serving the request carry it.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			sid := ""
			if ck, err := c.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = cfg.issue(c)
			}

			ctx := c.Request().Context()
			store, err := cfg.Manager.Open(ctx, sid)
			if err != nil {
				return err
			}
			c.Set(storeKey, store)
			c.Set(configKey, &cfg)

			token, err := store.Token(ctx)
			if err != nil {
				return err
			}
			if token != "" {
				c.SetRequest(c.Request().WithContext(rest.WithBearer(ctx, token)))
			}
			return next(c)
		}
	}
}

func (cfg *SessionConfig) issue(c echo.Context) string {
	sid := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// Renew moves the request onto a freshly issued session id and returns its
// store. Login calls it so a session id handed out before authentication
// never carries the principal. Whatever the previous session still held is
// cleared.
func Renew(c echo.Context) (*service.SessionStore, error) {
	cfg, ok := c.Get(configKey).(*SessionConfig)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	ctx := c.Request().Context()
	if prev := Store(c); prev != nil && prev.CurrentUser() != nil {
		if err := prev.Logout(ctx); err != nil {
			return nil, err
		}
	}

	store, err := cfg.Manager.Open(ctx, cfg.issue(c))
	if err != nil {
		return nil, err
	}
	c.Set(storeKey, store)
	return store, nil
}

// Store returns the session store injected by Session, or nil.
func Store(c echo.Context) *service.SessionStore {
	s, _ := c.Get(storeKey).(*service.SessionStore)
	return s
}

// RequireSession lets authenticated sessions through. Pages redirect to the
// login entry point; JSON and websocket endpoints answer 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := Store(c)
			if s != nil && s.IsAuthenticated(c.Request().Context()) {
				return next(c)
			}
			if wantsJSON(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
	}
}

// GuestOnly sends already authenticated sessions to the home page.
func GuestOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s := Store(c); s != nil && s.IsAuthenticated(c.Request().Context()) {
				return c.Redirect(http.StatusSeeOther, "/home")
			}
			return next(c)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/ws/")
}
