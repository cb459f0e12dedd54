package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthid/registry/internal/core/domain"
	"github.com/healthid/registry/internal/core/ports"
)

// AuthService implements signup and login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. A nil throttle disables login throttling.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	logger zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		logger:   logger,
		now:      time.Now,
	}
}

// Signup creates the user and returns a token over its id and email.
// Email conflicts are detected by the store on insert, never pre-checked.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	firstname := strings.TrimSpace(in.Firstname)
	lastname := strings.TrimSpace(in.Lastname)
	healthAuthority := strings.TrimSpace(in.HealthAuthority)
	email := domain.NormalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)

	if firstname == "" || lastname == "" || email == "" || password == "" || healthAuthority == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user, err := s.repo.Create(ctx, &domain.User{
		ID:              uuid.NewString(),
		Firstname:       firstname,
		Lastname:        lastname,
		Email:           email,
		PasswordHash:    hash,
		HealthAuthority: healthAuthority,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(domain.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("health_authority", user.HealthAuthority).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login checks the password for the normalised email and returns a token.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// A throttle outage must not lock everyone out.
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	} else if !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		if ferr := s.throttle.Fail(ctx, email); ferr != nil {
			s.logger.Warn().Err(ferr).Msg("record failed login")
		}
		s.logger.Info().Str("user_id", user.ID).Msg("login rejected: bad password")
		return nil, domain.ErrInvalidPassword
	}

	if rerr := s.throttle.Reset(ctx, email); rerr != nil {
		s.logger.Warn().Err(rerr).Msg("reset login throttle")
	}

	token, err := s.tokens.Issue(domain.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{Token: token, User: user}, nil
}

type noopThrottle struct{}

func (noopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopThrottle) Fail(context.Context, string) error          { return nil }
func (noopThrottle) Reset(context.Context, string) error         { return nil }
