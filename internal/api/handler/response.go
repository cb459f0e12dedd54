package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorResponse is the body of every failed request. Details is only set
// for validation failures.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// internalError logs the cause and answers 500 with msg only; internal
// detail never reaches the client.
func internalError(c echo.Context, log zerolog.Logger, err error, msg string) error {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}
