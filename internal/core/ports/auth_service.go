package ports

import (
	"context"

	"github.com/healthid/registry/internal/core/domain"
)

// SignupInput carries the raw signup fields as received from the client.
type SignupInput struct {
	Firstname       string
	Lastname        string
	Email           string
	Password        string
	HealthAuthority string
}

// LoginInput carries the raw login fields as received from the client.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
}
