package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
)

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	Label         string            `json:"label"`
	User          *domain.Principal `json:"user"`
}

// Session returns the principal of the calling browser session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/session [get]
func Session(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	user := store.CurrentUser()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: store.IsAuthenticated(c.Request().Context()),
		Label:         user.DisplayLabel(),
		User:          user,
	})
}

// FormsHandler serves the JSON Schema of the registered form descriptors.
type FormsHandler struct {
	forms map[string]descriptor.FormConfig
}

func NewFormsHandler(forms map[string]descriptor.FormConfig) *FormsHandler {
	return &FormsHandler{forms: forms}
}

// Schema exports the validation rules of a screen's form.
//
// @Summary      Form schema
// @Tags         forms
// @Produce      json
// @Param        screen  path      string  true  "Screen name (e.g. type-produits)"
// @Success      200     {object}  map[string]any
// @Failure      401     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/forms/{screen}/schema [get]
func (h *FormsHandler) Schema(c echo.Context) error {
	cfg, ok := h.forms[c.Param("screen")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown form")
	}
	return c.JSON(http.StatusOK, cfg.JSONSchema())
}
