// File: cmd/hammer/app.go
package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/config"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/user"
	"github.com/iyunix/hammer/internal/repository/verification"
	"github.com/iyunix/hammer/internal/services"
	"github.com/iyunix/hammer/internal/services/admin_services"
	"github.com/iyunix/hammer/internal/services/sms"
	"github.com/iyunix/hammer/internal/services/user_services"
)

// app holds the wired object graph shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *services.ZapLogger
	db       *gorm.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	users    user.UserRepository
	profiles profile.ProfileRepository
	codes    verification.VerificationRepository
	tx       repository.Transactor

	referrals *user_services.ReferralService
	directory *user_services.UserDirectory
	auth      *user_services.AuthService
	admin     *admin_services.AdminService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := services.NewLogger("hammer", cfg.Environment, cfg.LogLevel)

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		metrics:  metrics.New(registry),
		users:    user.NewGormUserRepository(db),
		profiles: profile.NewGormProfileRepository(db),
		codes:    verification.NewGormVerificationRepository(db),
		tx:       repository.NewTransactor(db),
	}
	a.referrals = user_services.NewReferralService(a.profiles, a.users, a.tx, logger, a.metrics)
	a.directory = user_services.NewUserDirectory(a.users, a.referrals, a.tx, logger, a.metrics)
	a.auth = user_services.NewAuthService(a.users, cfg.JWTSecretKey, cfg.TokenTTL, logger)
	a.admin = admin_services.NewAdminService(a.users, a.profiles, a.codes, a.tx)
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// newProvider builds the configured delivery provider. The returned func
// releases its resources.
func newProvider(cfg *config.Config, logger sms.Logger) (sms.Provider, func(), error) {
	switch cfg.SMSProvider {
	case sms.ProviderLog:
		return sms.NewLogProvider(logger, cfg.LogMinDelay, cfg.LogMaxDelay), func() {}, nil
	case sms.ProviderSMSIR:
		return sms.NewSMSIRProvider(cfg.SMSConfig()), func() {}, nil
	case sms.ProviderAMQP:
		p, err := sms.NewAMQPProvider(cfg.AMQPConfig())
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown SMS provider %q", cfg.SMSProvider)
	}
}
