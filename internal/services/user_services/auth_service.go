// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/hammer/internal/auth"
	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository/user"
)

// ErrInactiveUser is returned when a token refers to a disabled account.
var ErrInactiveUser = errors.New("user account is inactive")

// AuthService issues and checks session tokens.
type AuthService struct {
	users     user.UserRepository
	secretKey []byte
	ttl       time.Duration
	logger    Logger
	now       Clock
}

func NewAuthService(users user.UserRepository, jwtSecretKey string, ttl time.Duration, logger Logger) *AuthService {
	return &AuthService{
		users:     users,
		secretKey: []byte(jwtSecretKey),
		ttl:       ttl,
		logger:    logger,
		now:       utcNow,
	}
}

// IssueSession signs a token for an authenticated user.
func (s *AuthService) IssueSession(u *domain.User) (string, error) {
	token, err := auth.GenerateJWT(u.ID, s.secretKey, s.ttl, s.now())
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateSession returns the user id carried by a valid token.
func (s *AuthService) ValidateSession(token string) (uint, error) {
	return auth.ValidateToken(token, s.secretKey)
}

// CurrentUser resolves a token to an active user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	id, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		s.logger.Warn("token presented for inactive user", "user_id", u.ID)
		return nil, ErrInactiveUser
	}
	return u, nil
}
