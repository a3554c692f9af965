package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/api/middleware"
	"github.com/mboutique/backoffice/internal/api/view"
	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/form"
	"github.com/mboutique/backoffice/internal/pkg/metrics"
)

// LoginForm is the descriptor of the login screen.
var LoginForm = descriptor.FormConfig{
	SubmitLabel: "Se connecter",
	Fields: []descriptor.Field{
		{Key: "email", Label: "Email", Kind: descriptor.FieldEmail, Placeholder: "exemple@email.com", Required: true},
		{Key: "password", Label: "Mot de passe", Kind: descriptor.FieldPassword, Required: true, MinLength: descriptor.Ptr(6)},
	},
}

type AuthHandler struct {
	log zerolog.Logger
}

func NewAuthHandler(log zerolog.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

// LoginPage renders the login screen.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, form.New(LoginForm, nil))
}

// Login authenticates the posted credentials against the remote service.
// Success flashes a confirmation and navigates home; a rejection re-renders
// the screen with the server message.
func (h *AuthHandler) Login(c echo.Context) error {
	if _, err := sessionStore(c); err != nil {
		return err
	}
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	f := form.New(LoginForm, nil)
	f.Bind(params)
	values, err := f.Submit()
	if err != nil {
		metrics.FormRejectionsTotal.WithLabelValues("login").Inc()
		return h.renderLogin(c, http.StatusUnprocessableEntity, f)
	}

	creds, err := descriptor.Decode[domain.Credentials](values)
	if err != nil {
		return err
	}
	if err := c.Validate(&creds); err != nil {
		return h.renderLoginError(c, http.StatusUnprocessableEntity, f, err.Error())
	}

	store, err := middleware.Renew(c)
	if err != nil {
		return err
	}
	if _, err := store.Login(c.Request().Context(), creds); err != nil {
		if !errors.Is(err, domain.ErrAuth) {
			h.log.Warn().Err(err).Str("email", creds.Email).Msg("login failed")
		}
		f.SetValue(descriptor.Record{"password": ""})
		return h.renderLoginError(c, statusFor(err), f, domain.UserMessage(err, "Erreur de connexion"))
	}

	setFlash(c, view.FlashSuccess, "Connexion réussie !")
	return c.Redirect(http.StatusSeeOther, "/home")
}

// Logout clears the session and returns to the login entry point.
func (h *AuthHandler) Logout(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	if err := store.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) renderLoginError(c echo.Context, status int, f *form.Form, msg string) error {
	c.Set(flashPending, &view.Flash{Kind: view.FlashError, Message: msg})
	return h.renderLogin(c, status, f)
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, f *form.Form) error {
	return c.Render(status, view.PageLogin, page(c, "Connexion", view.FormData{
		Heading: "Connexion",
		Action:  "/login",
		Fields:  f.Fields(),
		Submit:  f.Config().SubmitText(),
	}))
}
