package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/neobrutal/account-system/internal/api/handler"
	"github.com/neobrutal/account-system/internal/api/middleware"
	"github.com/neobrutal/account-system/internal/core/service"
	"github.com/neobrutal/account-system/internal/infrastructure/db/postgres"
	"github.com/neobrutal/account-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes
// registered. Route authorization requirements are declared in the same
// place the routes are, so the registry the guard consults is complete
// by the time the server starts; anything not listed is protected by
// the registry's fallback.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	repo := postgres.NewAccountRepository(pool)
	hasher := service.NewBcryptHasher()
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(repo, hasher, tokens, log)
	accountService := service.NewAccountService(repo, hasher, log)

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(pool)

	registry := middleware.NewRouteRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))
	e.Use(middleware.Authn(registry, tokens))

	// --- Auth routes (public) ---
	registry.Public(http.MethodPost, "/auth/register")
	e.POST("/auth/register", authHandler.Register)
	registry.Public(http.MethodPost, "/auth/login")
	e.POST("/auth/login", authHandler.Login)
	registry.Public(http.MethodPost, "/auth/refresh")
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Account routes (bearer-protected, the registry fallback) ---
	e.POST("/accounts", accountHandler.Create)
	e.GET("/accounts", accountHandler.List)
	e.GET("/accounts/stats", accountHandler.Stats)
	e.GET("/accounts/search", accountHandler.Search)
	e.GET("/accounts/:id", accountHandler.Get)
	e.PUT("/accounts/:id", accountHandler.Update)
	e.DELETE("/accounts/:id", accountHandler.Delete)
	e.PUT("/accounts/:id/password", accountHandler.ChangePassword)
	e.PUT("/accounts/bulk/status", accountHandler.BulkUpdateStatus)
	e.POST("/accounts/validate", accountHandler.Validate)

	// --- Health probes and metrics (no auth required) ---
	registry.Public(http.MethodGet, "/health")
	e.GET("/health", healthHandler.Liveness)
	registry.Public(http.MethodGet, "/health/ready")
	e.GET("/health/ready", healthDepsHandler.Readiness)
	registry.Public(http.MethodGet, "/metrics")
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
