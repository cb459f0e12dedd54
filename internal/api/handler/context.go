package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthid/registry/internal/api/middleware"
	"github.com/healthid/registry/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was registered without the bearer strategy.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*domain.Claims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Access denied, no token provided")
	}
	return claims, nil
}
