package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/api/middleware"
	"github.com/mboutique/backoffice/internal/api/view"
	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/service"
	"github.com/mboutique/backoffice/internal/infrastructure/db/memory"
	"github.com/mboutique/backoffice/internal/infrastructure/rest"
	"github.com/mboutique/backoffice/internal/testutil/upstream"
)

const (
	testSID      = "6f1c1e0a-8a43-4d3c-9b0e-2b8f5b8f1a11"
	testPassword = "secret1"
)

var alice = domain.Principal{ID: "u1", Email: "alice@example.com", Role: domain.RoleAdmin, Name: "Alice"}

type app struct {
	e   *echo.Echo
	up  *upstream.Server
	mgr *service.SessionManager
}

// newApp wires the handlers against a fake upstream, without CSRF.
func newApp(t *testing.T) *app {
	t.Helper()
	up := upstream.New()
	t.Cleanup(up.Close)
	up.AddUser(alice, testPassword)

	mgr := service.NewSessionManager(memory.NewSessionKV(), rest.NewAuthClient(up.BaseURL()), zerolog.Nop())

	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	e.Validator = NewValidator()
	e.Use(middleware.Session(middleware.SessionConfig{Manager: mgr, TTL: time.Hour}))

	guest := middleware.GuestOnly()
	protected := middleware.RequireSession()

	auth := NewAuthHandler(zerolog.Nop())
	e.GET("/login", auth.LoginPage, guest)
	e.POST("/login", auth.Login, guest)
	e.POST("/logout", auth.Logout, protected)
	e.GET("/home", Home, protected)

	screen := NewTypeProduitScreen(rest.NewClient[domain.TypeProduit](up.BaseURL(), typeProduitCollection), zerolog.Nop())
	screen.Register(e.Group("/"+typeProduitCollection, protected))

	forms := NewFormsHandler(map[string]descriptor.FormConfig{
		"login":               LoginForm,
		typeProduitCollection: screen.Config().Form,
	})
	e.GET("/api/session", Session, protected)
	e.GET("/api/forms/:screen/schema", forms.Schema, protected)
	e.GET("/ws/session", NewSessionStream(zerolog.Nop()).Serve, protected)

	return &app{e: e, up: up, mgr: mgr}
}

// do sends a request carrying the test session cookie. A non-nil form is
// posted url-encoded.
func (a *app) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSID})
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) store(t *testing.T) *service.SessionStore {
	t.Helper()
	return a.storeOf(t, testSID)
}

func (a *app) storeOf(t *testing.T, sid string) *service.SessionStore {
	t.Helper()
	s, err := a.mgr.Open(context.Background(), sid)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// sidOf returns the session id cookie set by the response, or "".
func sidOf(rec *httptest.ResponseRecorder) string {
	sid := ""
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			sid = ck.Value
		}
	}
	return sid
}

// login authenticates the test session directly and forgets the upstream
// calls it made.
func (a *app) login(t *testing.T) {
	t.Helper()
	defer a.up.ResetRequests()
	if _, err := a.store(t).Login(context.Background(), domain.Credentials{Email: alice.Email, Password: testPassword}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

// flashOf decodes the notification queued by the response, if any.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) *view.Flash {
	t.Helper()
	var f *view.Flash
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != flashCookie {
			continue
		}
		if ck.Value == "" {
			f = nil
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
		if err != nil {
			t.Fatalf("flash cookie not base64: %v", err)
		}
		f = &view.Flash{}
		if err := json.Unmarshal(raw, f); err != nil {
			t.Fatalf("flash cookie not json: %v", err)
		}
	}
	return f
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}
