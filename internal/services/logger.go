package services

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func (z *ZapLogger) Info(msg string, keysAndValues ...interface{})  { z.sugar.Infow(msg, keysAndValues...) }
func (z *ZapLogger) Error(msg string, keysAndValues ...interface{}) { z.sugar.Errorw(msg, keysAndValues...) }
func (z *ZapLogger) Debug(msg string, keysAndValues ...interface{}) { z.sugar.Debugw(msg, keysAndValues...) }
func (z *ZapLogger) Warn(msg string, keysAndValues ...interface{})  { z.sugar.Warnw(msg, keysAndValues...) }

// Sync flushes buffered entries; call it before the process exits.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar()}
}

// NewNopLogger is a logger that does nothing (for testing)
func NewNopLogger() *ZapLogger {
	return NewZapLogger(zap.NewNop())
}

// ParseLevel maps LOG_LEVEL values to zap levels, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds the service logger: JSON in production, console output
// elsewhere, nothing when GO_ENV=test.
func NewLogger(service, env, level string) *ZapLogger {
	if os.Getenv("GO_ENV") == "test" {
		return NewNopLogger()
	}

	var cfg zap.Config
	if strings.ToLower(env) == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	l, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return NewZapLogger(zap.NewExample())
	}
	return NewZapLogger(l)
}
