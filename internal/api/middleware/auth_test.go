package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/service"
	"github.com/mboutique/backoffice/internal/infrastructure/db/memory"
	"github.com/mboutique/backoffice/internal/testutil/upstream"
)

type stubAuthenticator struct {
	token string
}

func (s stubAuthenticator) Login(context.Context, domain.Credentials) (*domain.Session, error) {
	return &domain.Session{Token: s.token, Principal: &domain.Principal{ID: "1", Email: "a@b.com", Role: domain.RoleClient}}, nil
}

const testSID = "6f1c1e0a-8a43-4d3c-9b0e-2b8f5b8f1a11"

func newManager(token string) *service.SessionManager {
	return service.NewSessionManager(memory.NewSessionKV(), stubAuthenticator{token: token}, zerolog.Nop())
}

func serve(t *testing.T, mgr *service.SessionManager, path string, withCookie bool, chain ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSID})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	h = Session(SessionConfig{Manager: mgr, TTL: time.Hour})(h)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func login(t *testing.T, mgr *service.SessionManager) {
	t.Helper()
	store, err := mgr.Open(context.Background(), testSID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestSession_IssuesCookie(t *testing.T) {
	rec, called := serve(t, newManager(""), "/home", false)
	if !called {
		t.Fatalf("next not called")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("expected a session cookie, got %+v", cookies)
	}
}

func TestSession_KeepsValidCookie(t *testing.T) {
	rec, _ := serve(t, newManager(""), "/home", true)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("existing session must not be reissued")
	}
}

func TestRequireSession_RedirectsAnonymous(t *testing.T) {
	rec, called := serve(t, newManager(""), "/home", true, RequireSession())
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRequireSession_APIUnauthorized(t *testing.T) {
	rec, called := serve(t, newManager(""), "/api/session", true, RequireSession())
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSession_Authenticated(t *testing.T) {
	mgr := newManager(upstream.IssueToken(domain.Principal{ID: "1"}, time.Now().Add(time.Hour)))
	login(t, mgr)

	rec, called := serve(t, mgr, "/home", true, RequireSession())
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestRequireSession_ExpiredToken(t *testing.T) {
	mgr := newManager(upstream.IssueToken(domain.Principal{ID: "1"}, time.Now().Add(-time.Minute)))
	login(t, mgr)

	_, called := serve(t, mgr, "/home", true, RequireSession())
	if called {
		t.Fatalf("expired session must be redirected")
	}
}

func TestGuestOnly(t *testing.T) {
	mgr := newManager(upstream.IssueToken(domain.Principal{ID: "1"}, time.Now().Add(time.Hour)))

	if _, called := serve(t, mgr, "/login", true, GuestOnly()); !called {
		t.Fatalf("anonymous session must reach the login page")
	}

	login(t, mgr)
	rec, called := serve(t, mgr, "/login", true, GuestOnly())
	if called || rec.Header().Get(echo.HeaderLocation) != "/home" {
		t.Fatalf("authenticated session must be sent home, got %d", rec.Code)
	}
}

func TestRenew_IssuesFreshSession(t *testing.T) {
	mgr := newManager(upstream.IssueToken(domain.Principal{ID: "1"}, time.Now().Add(time.Hour)))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSID})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var before, after *service.SessionStore
	h := Session(SessionConfig{Manager: mgr, TTL: time.Hour})(func(c echo.Context) error {
		before = Store(c)
		s, err := Renew(c)
		if err != nil {
			return err
		}
		after = s
		_, err = s.Login(c.Request().Context(), domain.Credentials{Email: "a@b.com", Password: "secret1"})
		return err
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value == testSID {
		t.Fatalf("expected a fresh session cookie, got %+v", cookies)
	}
	if before == after || Store(c) != after {
		t.Fatalf("expected the renewed store in the context")
	}
	if s, _ := mgr.Open(context.Background(), testSID); s.CurrentUser() != nil {
		t.Fatalf("the previous session id must not carry the principal")
	}
	if s, _ := mgr.Open(context.Background(), cookies[0].Value); s.CurrentUser() == nil {
		t.Fatalf("the new session id must carry the principal")
	}
}
