package rest

import (
	"context"
	"errors"
	"testing"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/testutil/upstream"
)

func TestAuthClient_Login_Success(t *testing.T) {
	srv := upstream.New()
	defer srv.Close()
	srv.AddUser(domain.Principal{ID: "1", Email: "a@b.com", Role: domain.RoleClient}, "secret1")

	client := NewAuthClient(srv.BaseURL())
	session, err := client.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}
	if session.Principal.ID != "1" || session.Principal.Role != domain.RoleClient {
		t.Fatalf("unexpected principal: %+v", session.Principal)
	}
	if srv.LastRequest().Path != "/api/auth/login" {
		t.Fatalf("unexpected path %q", srv.LastRequest().Path)
	}
}

func TestAuthClient_Login_Rejected(t *testing.T) {
	srv := upstream.New()
	defer srv.Close()
	srv.AddUser(domain.Principal{ID: "1", Email: "a@b.com", Role: domain.RoleClient}, "secret1")

	client := NewAuthClient(srv.BaseURL())
	_, err := client.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "wrong-pass"})
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if msg := domain.UserMessage(err, "Erreur de connexion"); msg != "Identifiants invalides" {
		t.Fatalf("expected server message, got %q", msg)
	}
}

func TestAuthClient_Login_Unreachable(t *testing.T) {
	srv := upstream.New()
	base := srv.BaseURL()
	srv.Close()

	_, err := NewAuthClient(base).Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrNetwork only, got %v", err)
	}
}
