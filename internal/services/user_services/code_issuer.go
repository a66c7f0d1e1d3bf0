// File: internal/services/user_services/code_issuer.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository/verification"
)

const maxIssueAttempts = 3

// Notifier accepts a code for asynchronous delivery. Submit must not block.
type Notifier interface {
	Submit(phone, code string) error
}

// IssuedCode is what the boundary receives after a successful request.
type IssuedCode struct {
	PhoneNumber string
	Code        string
	ExpiresAt   time.Time
}

// CodeIssuer creates verification codes and hands them to the notifier.
type CodeIssuer struct {
	codes    verification.VerificationRepository
	notifier Notifier
	logger   Logger
	metrics  *metrics.Metrics
	now      Clock
}

func NewCodeIssuer(codes verification.VerificationRepository, notifier Notifier, logger Logger, m *metrics.Metrics) *CodeIssuer {
	return &CodeIssuer{
		codes:    codes,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		now:      utcNow,
	}
}

// RequestCode replaces any outstanding code for the phone with a new one.
// Delivery happens in the background; its failure does not fail the request.
func (s *CodeIssuer) RequestCode(ctx context.Context, rawPhone string) (*IssuedCode, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		s.logger.Warn("verification code requested with invalid phone", "error", err.Error())
		return nil, err
	}

	var record *domain.VerificationCode
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		record, err = domain.NewVerificationCode(phone, s.now())
		if err != nil {
			return nil, err
		}
		err = s.codes.Replace(ctx, record)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
		s.logger.Debug("concurrent code issuance, retrying", "phone", maskPhone(phone), "attempt", attempt)
	}
	if err != nil {
		s.logger.Error("failed to store verification code", "error", err, "phone", maskPhone(phone))
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	s.metrics.CodesIssued.Inc()
	if err := s.notifier.Submit(phone, record.Code); err != nil {
		s.logger.Warn("verification code not queued for delivery", "error", err, "phone", maskPhone(phone))
	}

	s.logger.Info("verification code issued", "phone", maskPhone(phone), "expires_at", record.ExpiresAt)
	return &IssuedCode{
		PhoneNumber: phone,
		Code:        record.Code,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}
