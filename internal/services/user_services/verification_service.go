// File: internal/services/user_services/verification_service.go
package user_services

import (
	"context"

	"github.com/iyunix/hammer/internal/domain"
)

// AuthResult is the outcome of a successful phone verification.
type AuthResult struct {
	User    *domain.User
	Created bool
	Token   string
}

// VerificationService runs the full sign-in flow: verify the code, get or
// create the user and issue a session.
type VerificationService struct {
	issuer    *CodeIssuer
	verifier  *CodeVerifier
	directory *UserDirectory
	auth      *AuthService
	logger    Logger
}

func NewVerificationService(issuer *CodeIssuer, verifier *CodeVerifier, directory *UserDirectory, auth *AuthService, logger Logger) *VerificationService {
	return &VerificationService{
		issuer:    issuer,
		verifier:  verifier,
		directory: directory,
		auth:      auth,
		logger:    logger,
	}
}

// RequestCode issues a code for the phone number.
func (s *VerificationService) RequestCode(ctx context.Context, phone string) (*IssuedCode, error) {
	return s.issuer.RequestCode(ctx, phone)
}

// Authenticate consumes the code and signs the owner in.
func (s *VerificationService) Authenticate(ctx context.Context, phone, code string) (*AuthResult, error) {
	normalized, err := s.verifier.Verify(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	u, created, err := s.directory.GetOrCreate(ctx, normalized)
	if err != nil {
		return nil, err
	}

	token, err := s.auth.IssueSession(u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "created", created)
	return &AuthResult{User: u, Created: created, Token: token}, nil
}
