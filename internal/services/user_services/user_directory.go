// File: internal/services/user_services/user_directory.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/user"
)

// UserDirectory finds users by phone and creates them, with their profile,
// on first successful verification.
type UserDirectory struct {
	users     user.UserRepository
	referrals *ReferralService
	tx        repository.Transactor
	logger    Logger
	metrics   *metrics.Metrics
}

func NewUserDirectory(users user.UserRepository, referrals *ReferralService, tx repository.Transactor, logger Logger, m *metrics.Metrics) *UserDirectory {
	return &UserDirectory{
		users:     users,
		referrals: referrals,
		tx:        tx,
		logger:    logger,
		metrics:   m,
	}
}

// GetOrCreate returns the user owning phone, creating it when absent. The
// bool reports whether this call created the user.
func (d *UserDirectory) GetOrCreate(ctx context.Context, rawPhone string) (*domain.User, bool, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, false, err
	}

	existing, err := d.users.FindByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	u := &domain.User{PhoneNumber: phone, IsActive: true}
	if err := u.SetUnusablePassword(); err != nil {
		return nil, false, fmt.Errorf("failed to set password: %w", err)
	}

	err = d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := d.users.Create(ctx, u); err != nil {
			return err
		}
		_, err := d.referrals.CreateProfile(ctx, u)
		return err
	})
	if errors.Is(err, domain.ErrConflict) {
		// Another request created the same phone first.
		winner, lookupErr := d.users.FindByPhone(ctx, phone)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("failed to load concurrently created user: %w", lookupErr)
		}
		d.logger.Debug("user created concurrently, using existing row", "phone", maskPhone(phone), "user_id", winner.ID)
		return winner, false, nil
	}
	if err != nil {
		d.logger.Error("failed to create user", "error", err, "phone", maskPhone(phone))
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	d.metrics.UsersCreated.Inc()
	d.logger.Info("user created", "user_id", u.ID, "phone", maskPhone(phone))
	return u, true, nil
}

// FindByID loads a user by primary key.
func (d *UserDirectory) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return d.users.FindByID(ctx, id)
}

// CreateSuperuser creates a staff account with a usable password. It gets a
// profile like any other user.
func (d *UserDirectory) CreateSuperuser(ctx context.Context, rawPhone, password string) (*domain.User, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	u := &domain.User{PhoneNumber: phone, IsActive: true, IsStaff: true, IsSuperuser: true}
	if err := u.SetPassword(password); err != nil {
		return nil, domain.NewValidationError("password", err.Error())
	}

	err = d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := d.users.Create(ctx, u); err != nil {
			return err
		}
		_, err := d.referrals.CreateProfile(ctx, u)
		return err
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.NewValidationError("phone_number", "a user with this phone number already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	d.logger.Info("superuser created", "user_id", u.ID, "phone", maskPhone(phone))
	return u, nil
}
