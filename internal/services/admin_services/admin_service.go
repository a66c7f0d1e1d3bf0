// File: internal/services/admin_services/admin_service.go
package admin_services

import (
	"context"
	"fmt"
	"time"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/user"
	"github.com/iyunix/hammer/internal/repository/verification"
)

const defaultPageSize = 20

// UserPage is one page of the user listing.
type UserPage struct {
	Users []domain.User
	Total int64
	Page  int
	Limit int
}

// AdminService provides functionalities for administrative tasks.
type AdminService struct {
	users    user.UserRepository
	profiles profile.ProfileRepository
	codes    verification.VerificationRepository
	tx       repository.Transactor
	now      func() time.Time
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(users user.UserRepository, profiles profile.ProfileRepository, codes verification.VerificationRepository, tx repository.Transactor) *AdminService {
	return &AdminService{
		users:    users,
		profiles: profiles,
		codes:    codes,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListUsers pages through users, optionally filtered by a phone fragment.
func (s *AdminService) ListUsers(ctx context.Context, page, limit int, search string) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	users, total, err := s.users.FindAllWithPaginationAndSearch(ctx, page, limit, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserPage{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// ExportUsers returns every user, for the CSV export.
func (s *AdminService) ExportUsers(ctx context.Context) ([]domain.User, error) {
	users, _, err := s.users.FindAllWithPaginationAndSearch(ctx, 1, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user and its profile. Profiles that had activated
// the deleted profile's invite code lose the activation.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return err
		}
		if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return s.users.Delete(ctx, userID)
	})
	if err != nil {
		if domain.KindOf(err) != "" {
			return err
		}
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}

// PurgeExpiredCodes deletes verification codes past their expiry.
func (s *AdminService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	n, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired codes: %w", err)
	}
	return n, nil
}
