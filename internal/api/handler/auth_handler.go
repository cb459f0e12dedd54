package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthid/registry/internal/api/metrics"
	"github.com/healthid/registry/internal/core/domain"
	"github.com/healthid/registry/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m, log: log}
}

type signupRequest struct {
	Firstname       string `json:"firstname"       validate:"required,notblank"`
	Lastname        string `json:"lastname"        validate:"required,notblank"`
	Email           string `json:"email"           validate:"required,notblank"`
	Password        string `json:"password"        validate:"required,notblank"`
	HealthAuthority string `json:"healthAuthority" validate:"required,notblank"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,notblank"`
	Password string `json:"password" validate:"required,notblank"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

const (
	msgSignupFieldsRequired = "All fields are required"
	msgLoginFieldsRequired  = "Email and password are required"
)

// Signup registers a new user and returns a bearer token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "User registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgSignupFieldsRequired, Details: err.Error()})
	}

	res, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Firstname:       req.Firstname,
		Lastname:        req.Lastname,
		Email:           req.Email,
		Password:        req.Password,
		HealthAuthority: req.HealthAuthority,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.metrics.SignupsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgSignupFieldsRequired})
		case errors.Is(err, domain.ErrPasswordTooLong):
			h.metrics.SignupsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrEmailInUse):
			h.metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Email already in use"})
		}
		h.metrics.SignupsTotal.WithLabelValues("error").Inc()
		return internalError(c, h.log, err, "Registration failed")
	}

	h.metrics.SignupsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, tokenResponse{Message: "User registered successfully", Token: res.Token})
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgLoginFieldsRequired, Details: err.Error()})
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgLoginFieldsRequired})
		case errors.Is(err, domain.ErrUserNotFound):
			h.metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{Error: "User not found"})
		case errors.Is(err, domain.ErrInvalidPassword):
			h.metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid password"})
		case errors.Is(err, domain.ErrTooManyAttempts):
			h.metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many failed login attempts, try again later"})
		}
		h.metrics.LoginsTotal.WithLabelValues("error").Inc()
		return internalError(c, h.log, err, "Internal server error")
	}

	h.metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Message: "Login successful", Token: res.Token})
}
