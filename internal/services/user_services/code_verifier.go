// File: internal/services/user_services/code_verifier.go
package user_services

import (
	"context"
	"fmt"
	"strings"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository/verification"
)

// CodeVerifier checks submitted codes and consumes them on success.
type CodeVerifier struct {
	codes   verification.VerificationRepository
	logger  Logger
	metrics *metrics.Metrics
	now     Clock
}

func NewCodeVerifier(codes verification.VerificationRepository, logger Logger, m *metrics.Metrics) *CodeVerifier {
	return &CodeVerifier{
		codes:   codes,
		logger:  logger,
		metrics: m,
		now:     utcNow,
	}
}

// Verify validates the (phone, code) pair and deletes the record when it
// matches. It returns the normalized phone number of the verified owner.
func (s *CodeVerifier) Verify(ctx context.Context, rawPhone, code string) (string, error) {
	phone, err := s.verify(ctx, rawPhone, strings.TrimSpace(code))
	s.metrics.CodeVerifications.WithLabelValues(resultLabel(err)).Inc()
	return phone, err
}

func (s *CodeVerifier) verify(ctx context.Context, rawPhone, code string) (string, error) {
	if strings.TrimSpace(rawPhone) == "" || code == "" {
		return "", domain.ErrMissingField
	}
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return "", err
	}
	if err := domain.ValidateVerificationCode(code); err != nil {
		return "", err
	}

	record, err := s.codes.FindByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("failed to load verification code: %w", err)
	}
	if record == nil {
		s.logger.Info("verification attempted without outstanding code", "phone", maskPhone(phone))
		return "", domain.ErrCodeNotRequested
	}

	if !record.IsValid(s.now()) {
		s.logger.Info("expired verification code submitted", "phone", maskPhone(phone))
		return "", domain.ErrCodeExpired
	}
	if !record.Matches(code) {
		s.logger.Warn("invalid verification code submitted", "phone", maskPhone(phone))
		return "", domain.ErrCodeMismatch
	}

	consumed, err := s.codes.Consume(ctx, record.ID)
	if err != nil {
		return "", fmt.Errorf("failed to consume verification code: %w", err)
	}
	if !consumed {
		// Another request consumed or replaced this record first.
		return "", domain.ErrCodeNotRequested
	}

	s.logger.Info("phone number verified", "phone", maskPhone(phone))
	return phone, nil
}
