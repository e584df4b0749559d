package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/api/metrics"
	"github.com/neobrutal/account-system/internal/core/domain"
)

// AuthMode is a way a caller can satisfy a route's authentication
// requirement.
type AuthMode string

const (
	// AuthNone is always satisfied; routes requiring only AuthNone are
	// public.
	AuthNone AuthMode = "none"
	// AuthBearer requires a valid bearer access token.
	AuthBearer AuthMode = "bearer"
)

// Condition combines multiple required modes on one route.
type Condition string

const (
	ConditionAnd Condition = "and"
	ConditionOr  Condition = "or"
)

// Requirement is the authorization metadata attached to a route at
// registration time. Read-only once the server is running.
type Requirement struct {
	Modes     []AuthMode
	Condition Condition
}

// Public is the requirement of routes reachable without credentials.
func Public() Requirement {
	return Requirement{Modes: []AuthMode{AuthNone}, Condition: ConditionAnd}
}

// Bearer is the requirement of token-protected routes.
func Bearer() Requirement {
	return Requirement{Modes: []AuthMode{AuthBearer}, Condition: ConditionAnd}
}

// RouteRegistry maps "METHOD /route/path" to its authorization
// requirement. It is built once at startup and consulted by Authn on
// every request; routes never registered fall back to Bearer, so a
// forgotten registration fails closed.
type RouteRegistry struct {
	rules    map[string]Requirement
	fallback Requirement
}

func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		rules:    make(map[string]Requirement),
		fallback: Bearer(),
	}
}

// Register attaches a requirement to a route. The path must be the
// registered route pattern (e.g. "/accounts/:id"), not a concrete URL.
func (r *RouteRegistry) Register(method, path string, req Requirement) {
	r.rules[routeKey(method, path)] = req
}

// Public marks a route as reachable without credentials.
func (r *RouteRegistry) Public(method, path string) {
	r.Register(method, path, Public())
}

// Lookup returns the requirement for a route, or the protected fallback
// when none was registered.
func (r *RouteRegistry) Lookup(method, path string) Requirement {
	if req, ok := r.rules[routeKey(method, path)]; ok {
		return req
	}
	return r.fallback
}

func routeKey(method, path string) string {
	return method + " " + path
}

// AccessVerifier is the slice of the token service the guard needs.
type AccessVerifier interface {
	VerifyAccess(token string) (*domain.AccessClaims, error)
}

// Context keys under which the guard exposes the verified identity.
const (
	ContextKeyClaims   = "auth_claims"
	ContextKeyUserID   = "user_id"
	ContextKeyRoleName = "role_name"
)

// Authn gates every request on the requirement registered for the
// matched route. Public routes pass untouched; protected routes must
// present a verifiable bearer token, whose claims are attached to the
// echo context for downstream handlers. Rejections short-circuit before
// any handler runs.
func Authn(registry *RouteRegistry, verifier AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := registry.Lookup(c.Request().Method, c.Path())

			claims, err := evaluate(c, req, verifier)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			if claims != nil {
				c.Set(ContextKeyClaims, claims)
				c.Set(ContextKeyUserID, claims.UserID)
				c.Set(ContextKeyRoleName, claims.RoleName)
			}
			return next(c)
		}
	}
}

// evaluate applies the combination rule: AND demands every mode
// succeed, OR demands at least one. Claims from a satisfied bearer mode
// are returned so the caller can attach them.
func evaluate(c echo.Context, req Requirement, verifier AccessVerifier) (*domain.AccessClaims, error) {
	if req.Condition == ConditionOr {
		var lastErr error
		for _, mode := range req.Modes {
			claims, err := satisfy(c, mode, verifier)
			if err == nil {
				return claims, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}

	var claims *domain.AccessClaims
	for _, mode := range req.Modes {
		got, err := satisfy(c, mode, verifier)
		if err != nil {
			return nil, err
		}
		if got != nil {
			claims = got
		}
	}
	return claims, nil
}

func satisfy(c echo.Context, mode AuthMode, verifier AccessVerifier) (*domain.AccessClaims, error) {
	switch mode {
	case AuthNone:
		return nil, nil
	case AuthBearer:
		token, err := bearerToken(c)
		if err != nil {
			return nil, err
		}
		return verifier.VerifyAccess(token)
	default:
		return nil, domain.ErrInvalidToken
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// An absent or malformed header is a missing token, not an invalid one.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrMissingToken
	}
	return parts[1], nil
}

func rejectionReason(err error) string {
	if errors.Is(err, domain.ErrMissingToken) {
		return "missing_token"
	}
	return "invalid_token"
}

// CurrentClaims returns the identity the guard attached for this
// request, if any.
func CurrentClaims(c echo.Context) (*domain.AccessClaims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*domain.AccessClaims)
	return claims, ok
}
