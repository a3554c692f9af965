package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/mboutique/backoffice/docs"
	"github.com/mboutique/backoffice/internal/api/handler"
	"github.com/mboutique/backoffice/internal/api/middleware"
	"github.com/mboutique/backoffice/internal/api/view"
	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/core/service"
	"github.com/mboutique/backoffice/internal/infrastructure/http/handlers"
	"github.com/mboutique/backoffice/internal/pkg/config"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Log          zerolog.Logger
	Sessions     *service.SessionManager
	TypeProduits ports.EntityClient[domain.TypeProduit]
	// Upstream reports reachability of the REST service for readiness.
	Upstream handlers.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Renderer = renderer
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	// HTTP metrics live in a per-router registry; /metrics gathers it along
	// with the default one.
	httpMetrics := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "backoffice",
		Skipper:    infraPath,
		Registerer: httpMetrics,
	}))
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper:        infraPath,
		TokenLookup:    "form:_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.Config.Session.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(middleware.Session(middleware.SessionConfig{
		Skipper:      infraPath,
		Manager:      d.Sessions,
		CookieSecure: d.Config.Session.CookieSecure,
		TTL:          d.Config.Session.TTL,
	}))

	guest := middleware.GuestOnly()
	protected := middleware.RequireSession()
	loginLimit := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(d.Config.Session.LoginRateLimit),
			Burst:     max(1, int(d.Config.Session.LoginRateLimit)),
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Trop de tentatives de connexion, réessayez plus tard")
		},
	})

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Log.With().Str("component", "auth").Logger())
	e.GET("/login", authHandler.LoginPage, guest)
	e.POST("/login", authHandler.Login, guest, loginLimit)
	e.POST("/logout", authHandler.Logout, protected)

	// --- Screens ---
	e.GET("/home", handler.Home, protected)
	typeProduits := handler.NewTypeProduitScreen(d.TypeProduits, d.Log.With().Str("component", "screen").Logger())
	typeProduits.Register(e.Group("/type-produits", protected))

	// --- JSON and push endpoints ---
	forms := handler.NewFormsHandler(map[string]descriptor.FormConfig{
		"login":                          handler.LoginForm,
		typeProduits.Config().Collection: typeProduits.Config().Form,
	})
	e.GET("/api/session", handler.Session, protected)
	e.GET("/api/forms/:screen/schema", forms.Schema, protected)
	e.GET("/ws/session", handler.NewSessionStream(d.Log.With().Str("component", "ws").Logger()).Serve, protected)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(
		handlers.Dependency{Name: "sessions", Pinger: d.Sessions},
		handlers.Dependency{Name: "upstream", Pinger: d.Upstream},
	)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.Static())

	// --- Fallbacks ---
	toLogin := func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/login") }
	e.GET("/", toLogin)
	e.RouteNotFound("/*", toLogin)

	return e, nil
}

// infraPath reports routes that carry no browser session: health checks, metrics,
// docs and assets.
func infraPath(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range []string{"/health", "/metrics", "/swagger/", "/static/"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      infraPath,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
