package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mboutique/backoffice/internal/api/view"
)

// Home renders the landing page of an authenticated session.
func Home(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageHome, page(c, "Accueil", nil))
}
