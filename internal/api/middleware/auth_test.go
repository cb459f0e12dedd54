package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/healthid/registry/internal/api/metrics"
	"github.com/healthid/registry/internal/core/domain"
	"github.com/healthid/registry/internal/infrastructure/token"
)

func newManager(t *testing.T, opts ...token.Option) *token.JWTManager {
	t.Helper()
	m, err := token.NewJWTManager("secret", time.Hour, opts...)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m
}

func runAuth(t *testing.T, m *token.JWTManager, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(m, metrics.New(nil))(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	m := newManager(t)
	signed, err := m.Issue(domain.Claims{UserID: "u-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	called := false
	rec := runAuth(t, m, "Bearer "+signed, func(c echo.Context) error {
		called = true
		claims, _ := c.Get(ClaimsKey).(*domain.Claims)
		if claims == nil || claims.UserID != "u-1" || claims.Email != "alice@example.com" {
			t.Fatalf("claims not set on echo context: %+v", claims)
		}
		fromCtx, ok := ClaimsFromContext(c.Request().Context())
		if !ok || fromCtx.UserID != "u-1" {
			t.Fatalf("claims not set on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	m := newManager(t)
	signed, _ := m.Issue(domain.Claims{UserID: "u-1", Email: "a@b.com"})

	rec := runAuth(t, m, "bearer "+signed, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, newManager(t), "", mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		rec := runAuth(t, newManager(t), header, mustNotRun(t))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec := runAuth(t, newManager(t), "Bearer not-a-token", mustNotRun(t))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	issuer := newManager(t, token.WithClock(func() time.Time { return past }))
	signed, _ := issuer.Issue(domain.Claims{UserID: "u-1", Email: "a@b.com"})

	rec := runAuth(t, newManager(t), "Bearer "+signed, mustNotRun(t))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ForeignSecret(t *testing.T) {
	other, _ := token.NewJWTManager("another-secret", time.Hour)
	signed, _ := other.Issue(domain.Claims{UserID: "u-1", Email: "a@b.com"})

	rec := runAuth(t, newManager(t), "Bearer "+signed, mustNotRun(t))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_CountsOutcomes(t *testing.T) {
	mgr := newManager(t)
	m := metrics.New(nil)
	e := echo.New()

	signed, err := mgr.Issue(domain.Claims{UserID: "u-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	for _, header := range []string{"", "Bearer garbage", "Bearer " + signed} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		_ = Auth(mgr, m)(func(echo.Context) error { return nil })(c)
	}

	for _, result := range []string{"missing", "invalid", "ok"} {
		if got := testutil.ToFloat64(m.TokenVerificationsTotal.WithLabelValues(result)); got != 1 {
			t.Errorf("token_verifications_total{result=%q}: expected 1, got %v", result, got)
		}
	}
}
