package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mboutique/backoffice/internal/api/middleware"
)

func TestSession_Authenticated(t *testing.T) {
	a := newApp(t)
	a.login(t)

	rec := a.do(http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Authenticated || resp.Label != "Alice" || resp.User == nil || resp.User.Email != alice.Email {
		t.Fatalf("unexpected session payload %+v", resp)
	}
}

func TestSession_Anonymous(t *testing.T) {
	a := newApp(t)

	if rec := a.do(http.MethodGet, "/api/session", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestFormsHandler_Schema(t *testing.T) {
	a := newApp(t)
	a.login(t)

	rec := a.do(http.MethodGet, "/api/forms/type-produits/schema", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var schema map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	required, _ := schema["required"].([]any)
	if len(required) != 1 || required[0] != "nomTypeProduit" {
		t.Fatalf("expected nomTypeProduit required, got %v", schema["required"])
	}

	login := a.do(http.MethodGet, "/api/forms/login/schema", nil)
	if !strings.Contains(login.Body.String(), `"format":"email"`) {
		t.Fatalf("expected email format in login schema: %s", login.Body.String())
	}

	if rec := a.do(http.MethodGet, "/api/forms/unknown/schema", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSessionStream_PushesCurrentUser(t *testing.T) {
	a := newApp(t)
	a.login(t)

	srv := httptest.NewServer(a.e)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Cookie", middleware.SessionCookie+"="+testSID)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/session", header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev userEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.User == nil || ev.User.Email != alice.Email || ev.Label != "Alice" {
		t.Fatalf("expected latest user on connect, got %+v", ev)
	}

	if err := a.store(t).Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.User != nil || ev.Label != "User" {
		t.Fatalf("expected null user after logout, got %+v", ev)
	}
}

func TestSessionStream_Anonymous(t *testing.T) {
	a := newApp(t)

	srv := httptest.NewServer(a.e)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/session", nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake, got %+v", resp)
	}
}
