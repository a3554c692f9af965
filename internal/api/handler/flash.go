package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mboutique/backoffice/internal/api/view"
)

const (
	flashCookie  = "flash"
	flashPending = "flash_pending"
)

// setFlash queues a notification for the next rendered page. It is stored in
// a short-lived cookie so it survives the redirect that usually follows.
func setFlash(c echo.Context, kind view.FlashKind, msg string) {
	f := &view.Flash{Kind: kind, Message: msg}
	c.Set(flashPending, f)
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending notification and clears it.
func takeFlash(c echo.Context) *view.Flash {
	if f, ok := c.Get(flashPending).(*view.Flash); ok {
		c.Set(flashPending, nil)
		clearFlash(c)
		return f
	}
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	clearFlash(c)

	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var f view.Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

func clearFlash(c echo.Context) {
	c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
