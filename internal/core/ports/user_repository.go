package ports

import (
	"context"

	"github.com/healthid/registry/internal/core/domain"
)

// UserRepository is the credential store. Create must report a uniqueness
// violation on email as domain.ErrEmailInUse; FindByEmail returns
// domain.ErrUserNotFound when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
