package user_services

import (
	"strings"
	"time"

	"github.com/iyunix/hammer/internal/domain"
)

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Clock returns the current time; tests replace it to move across expiry.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// maskPhone keeps the first digits of a phone number for log lines.
func maskPhone(phone string) string {
	return phone[:min(4, len(phone))] + "****"
}

// resultLabel turns an outcome into a metrics label value.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domain.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
