package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestAuthHandler_LoginPage(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/login", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="email"`, `type="password"`, "Se connecter"} {
		if !strings.Contains(body, want) {
			t.Fatalf("login page missing %q", want)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/login", url.Values{"email": {alice.Email}, "password": {testPassword}})
	expectRedirect(t, rec, "/home")

	f := flashOf(t, rec)
	if f == nil || f.Kind != "success" || f.Message != "Connexion réussie !" {
		t.Fatalf("unexpected flash %+v", f)
	}
	sid := sidOf(rec)
	if sid == "" || sid == testSID {
		t.Fatalf("login must issue a fresh session id, got %q", sid)
	}
	if u := a.storeOf(t, sid).CurrentUser(); u == nil || u.Email != alice.Email {
		t.Fatalf("expected alice as current user, got %+v", u)
	}
	if a.store(t).CurrentUser() != nil {
		t.Fatalf("the pre-login session id must stay anonymous")
	}
	if req := a.up.LastRequest(); req.Path != "/api/auth/login" {
		t.Fatalf("unexpected upstream call %+v", req)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/login", url.Values{"email": {alice.Email}, "password": {"wrong-password"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Identifiants invalides") {
		t.Fatalf("expected server message in page")
	}
	if strings.Contains(body, "wrong-password") {
		t.Fatalf("password must not be echoed back")
	}
	if a.store(t).CurrentUser() != nil {
		t.Fatalf("rejected login must not set a user")
	}
}

func TestAuthHandler_Login_InvalidForm(t *testing.T) {
	a := newApp(t)

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"empty", url.Values{}, "Email est requis"},
		{"bad email", url.Values{"email": {"nope"}, "password": {testPassword}}, "Email invalide"},
		{"short password", url.Values{"email": {alice.Email}, "password": {"abc"}}, "Minimum 6 caractères"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/login", tt.values)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("expected %q in page", tt.want)
			}
		})
	}
	if n := len(a.up.Requests()); n != 0 {
		t.Fatalf("invalid forms must not reach upstream, got %d calls", n)
	}
}

func TestAuthHandler_GuestOnlyWhenAuthenticated(t *testing.T) {
	a := newApp(t)
	a.login(t)

	expectRedirect(t, a.do(http.MethodGet, "/login", nil), "/home")
}

func TestAuthHandler_Logout(t *testing.T) {
	a := newApp(t)
	a.login(t)

	expectRedirect(t, a.do(http.MethodPost, "/logout", url.Values{}), "/login")
	if a.store(t).CurrentUser() != nil {
		t.Fatalf("expected no current user after logout")
	}
	expectRedirect(t, a.do(http.MethodGet, "/home", nil), "/login")
}

func TestHome_RendersUser(t *testing.T) {
	a := newApp(t)
	a.login(t)

	rec := a.do(http.MethodGet, "/home", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Bienvenue, Alice") {
		t.Fatalf("expected greeting, got %s", body)
	}
	if !strings.Contains(body, `href="/type-produits"`) {
		t.Fatalf("expected side navigation")
	}
}
