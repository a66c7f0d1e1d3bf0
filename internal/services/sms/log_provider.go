// File: internal/services/sms/log_provider.go
package sms

import (
	"context"
	"math/rand/v2"
	"time"
)

// LogProvider pretends to deliver codes by logging them after a random
// delay. It stands in for a real gateway in development.
type LogProvider struct {
	logger   Logger
	minDelay time.Duration
	maxDelay time.Duration
}

func NewLogProvider(logger Logger, minDelay, maxDelay time.Duration) *LogProvider {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &LogProvider{logger: logger, minDelay: minDelay, maxDelay: maxDelay}
}

func (p *LogProvider) Name() string { return ProviderLog }

func (p *LogProvider) SendVerificationCode(ctx context.Context, phone, code string) error {
	p.logger.Debug("simulating verification code delivery", "phone", phone)

	delay := p.minDelay
	if spread := p.maxDelay - p.minDelay; spread > 0 {
		delay += time.Duration(rand.Int64N(int64(spread)))
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return &SMSError{Type: ErrTypeNetwork, Message: "delivery interrupted", Cause: ctx.Err()}
		case <-timer.C:
		}
	}

	p.logger.Info("verification code delivered", "phone", phone, "code", code, "delay", delay.String())
	return nil
}

func (p *LogProvider) HealthCheck(ctx context.Context) error {
	return nil
}
