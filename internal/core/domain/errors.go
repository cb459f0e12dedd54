package domain

import "errors"

// Validation errors.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPasswordTooLong = errors.New("password must be 72 bytes or fewer")
)

// Credential store errors.
var (
	ErrEmailInUse   = errors.New("email already in use")
	ErrUserNotFound = errors.New("user not found")
)

// Authentication errors.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)
