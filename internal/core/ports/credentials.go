package ports

import (
	"context"

	"github.com/healthid/registry/internal/core/domain"
)

// PasswordHasher hashes and checks passwords. Compare reports a mismatch as
// (false, nil); an error means the digest itself could not be used.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) (bool, error)
}

// TokenIssuer signs identity claims into a bearer token.
type TokenIssuer interface {
	Issue(claims domain.Claims) (string, error)
}

// TokenVerifier checks a bearer token and returns the claims it carries.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// LoginThrottle limits repeated failed logins per email.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
