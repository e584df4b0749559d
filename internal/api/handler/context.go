package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neobrutal/account-system/internal/api/middleware"
	"github.com/neobrutal/account-system/internal/core/domain"
)

// ctxClaims extracts the identity injected by the Authn guard and
// fast-fails before any service call: a protected handler running
// without claims means the route was misregistered, never a caller
// mistake, but it must still be rejected with 401 rather than acted on.
func ctxClaims(c echo.Context) (*domain.AccessClaims, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
