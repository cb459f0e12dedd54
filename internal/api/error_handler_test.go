package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runErrorHandler(t *testing.T, method string, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var logs bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(method, "/x", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.New(&logs))(err, e.NewContext(req, rec))
	return rec, logs.String()
}

func TestHTTPErrorHandler_HTTPErrorAsIs(t *testing.T) {
	rec, _ := runErrorHandler(t, http.MethodGet, echo.NewHTTPError(http.StatusForbidden, "Invalid token"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Invalid token"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHTTPErrorHandler_UnexpectedErrorHidden(t *testing.T) {
	rec, logs := runErrorHandler(t, http.MethodGet, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(logs, "connection refused") {
		t.Fatalf("cause not logged: %s", logs)
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	rec, _ := runErrorHandler(t, http.MethodHead, echo.ErrNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}
