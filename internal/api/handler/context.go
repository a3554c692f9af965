package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mboutique/backoffice/internal/api/middleware"
	"github.com/mboutique/backoffice/internal/api/view"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/service"
)

// csrfKey is where echo's CSRF middleware leaves the form token.
const csrfKey = "csrf"

// sessionStore returns the store injected by the session middleware. Its
// absence means the route was wired without it: reject with 401 before any
// upstream call.
func sessionStore(c echo.Context) (*service.SessionStore, error) {
	s := middleware.Store(c)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}

// page assembles the data every template receives and consumes the pending
// flash, if any.
func page(c echo.Context, title string, data any) view.Page {
	p := view.Page{
		Title: title,
		Nav:   view.NavFor(c.Request().URL.Path),
		Flash: takeFlash(c),
		Data:  data,
	}
	if s := middleware.Store(c); s != nil {
		p.User = s.CurrentUser()
	}
	p.CSRF, _ = c.Get(csrfKey).(string)
	return p
}

// statusFor maps an error kind to the status of the page rendered for it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
