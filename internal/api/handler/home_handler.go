package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HomeHandler serves the bearer-protected routes.
type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type validateTokenResponse struct {
	Valid bool      `json:"valid"`
	User  tokenUser `json:"user"`
}

// Home is the protected landing route.
//
// @Summary      Protected home page
// @Tags         home
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /home [get]
func (h *HomeHandler) Home(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Welcome to the Home Page!"})
}

// ValidateToken lets a client check whether its stored token is still good.
//
// @Summary      Validate a bearer token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  validateTokenResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /validate-token [get]
func (h *HomeHandler) ValidateToken(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, validateTokenResponse{
		Valid: true,
		User:  tokenUser{ID: claims.UserID, Email: claims.Email},
	})
}
