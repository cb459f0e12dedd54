package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/healthid/registry/docs"
	"github.com/healthid/registry/internal/api/handler"
	"github.com/healthid/registry/internal/api/metrics"
	"github.com/healthid/registry/internal/api/middleware"
	"github.com/healthid/registry/internal/core/ports"
	"github.com/healthid/registry/internal/infrastructure/http/handlers"
)

// AuthStrategy is how a route authenticates its caller.
type AuthStrategy int

const (
	// AuthNone marks a public route.
	AuthNone AuthStrategy = iota
	// AuthBearer requires a valid bearer token.
	AuthBearer
)

// Route is one entry in the static route table.
type Route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
	Auth    AuthStrategy
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	AuthService   ports.AuthService
	TokenVerifier ports.TokenVerifier
	Readiness     map[string]handlers.Pinger
	CORSOrigins   []string
	Logger        zerolog.Logger
	// Registry receives the HTTP and auth metrics and backs /metrics.
	// Defaults to the global registry.
	Registry *prometheus.Registry
}

// Routes returns every API route with its auth strategy.
func Routes(d Deps, m *metrics.Metrics) []Route {
	authHandler := handler.NewAuthHandler(d.AuthService, m, d.Logger)
	homeHandler := handler.NewHomeHandler()
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	return []Route{
		{http.MethodPost, "/signup", authHandler.Signup, AuthNone},
		{http.MethodPost, "/login", authHandler.Login, AuthNone},
		{http.MethodGet, "/home", homeHandler.Home, AuthBearer},
		{http.MethodGet, "/validate-token", homeHandler.ValidateToken, AuthBearer},
		{http.MethodGet, "/health", healthHandler.Liveness, AuthNone},
		{http.MethodGet, "/health/ready", healthDepsHandler.Readiness, AuthNone},
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "registry",
		Registerer: registerer,
	}))

	m := metrics.New(registerer)
	bearer := middleware.Auth(d.TokenVerifier, m)
	for _, r := range Routes(d, m) {
		var mw []echo.MiddlewareFunc
		if r.Auth == AuthBearer {
			mw = append(mw, bearer)
		}
		e.Add(r.Method, r.Path, r.Handler, mw...)
	}

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
