package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService implements account signup, login and token resolution.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	logger *slog.Logger
}

// NewAuthService creates an AuthService. A nil logger discards output.
func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer, hasher ports.PasswordHasher, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, logger: orDiscard(logger)}
}

// Signup creates an account. The account that brings the total to one is
// promoted to admin.
func (s *AuthService) Signup(ctx context.Context, reg user.Registration) (*ports.AuthResult, error) {
	reg.Email = user.NormalizeEmail(reg.Email)
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	switch _, err := s.users.FindByEmail(ctx, reg.Email); {
	case err == nil:
		return nil, fmt.Errorf("%w: user with this email already exists", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &user.User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create user",
			slog.String("operation", "Signup"),
			slog.Any("error", err),
		)
		return nil, err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 1 {
		if err := s.users.SetRole(ctx, created.ID, user.RoleAdmin); err != nil {
			return nil, err
		}
		created.Role = user.RoleAdmin
		s.logger.InfoContext(ctx, "first account promoted to admin", slog.String("user_id", created.ID))
	}

	return s.issue(created)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return s.issue(u)
}

// Authenticate resolves a bearer token to its account. A token for a
// deleted account is unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
	}
	return u, err
}

func (s *AuthService) issue(u *user.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: u, Token: token}, nil
}
