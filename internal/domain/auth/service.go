package auth

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain/users"
	"tokopos/pkg/logger"
)

// Service authenticates users and issues tokens.
type Service struct {
	users users.Repository
	jwt   *JWTService
}

// NewService creates a new auth service.
func NewService(userRepo users.Repository, jwtService *JWTService) *Service {
	return &Service{users: userRepo, jwt: jwtService}
}

// LoginResult carries the issued token and its expiry.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *users.User `json:"user"`
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password return the same error, so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if !u.IsActive || !u.CheckPassword(password) {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "tenant_id", u.TenantID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
