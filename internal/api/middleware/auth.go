package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthid/registry/internal/api/metrics"
	"github.com/healthid/registry/internal/core/domain"
	"github.com/healthid/registry/internal/core/ports"
)

// ClaimsKey is the echo context key holding the verified *domain.Claims.
const ClaimsKey = "claims"

type claimsCtxKey struct{}

// ClaimsFromContext returns the claims the Auth middleware attached to ctx.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(*domain.Claims)
	return c, ok
}

// Auth requires a bearer token. A missing or non-bearer Authorization header
// is answered with 401, a token that fails verification with 403. It never
// consults the credential store.
func Auth(verifier ports.TokenVerifier, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				m.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied, no token provided")
			}

			claims, err := verifier.Verify(tok)
			if err != nil {
				m.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "Invalid token")
			}
			m.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set(ClaimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), claimsCtxKey{}, claims)))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
