// File: internal/services/sms/interface.go
package sms

import "context"

// Provider delivers a verification code to a phone number.
type Provider interface {
	Name() string
	SendVerificationCode(ctx context.Context, phone, code string) error
	HealthCheck(ctx context.Context) error
}

// Logger is the logging contract of the delivery pipeline.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
