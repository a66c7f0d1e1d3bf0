// File: internal/repository/profile/profile_repository.go
package profile

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository"
)

// ProfileRepository persists profiles and the activation edge between them.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uint) (*domain.Profile, error)
	FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error)
	FindByInviteCode(ctx context.Context, code string) (*domain.Profile, error)
	SetActivatedInviteCode(ctx context.Context, profileID, targetID uint) (bool, error)
	FindReferrerUserIDs(ctx context.Context, profileID uint) ([]uint, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

type gormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

// Create inserts the profile; a taken invite code or user id yields
// domain.ErrConflict.
func (r *gormProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	err := repository.Conn(ctx, r.db).Omit("User", "ActivatedInviteCode").Create(profile).Error
	if repository.IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *gormProfileRepository) FindByID(ctx context.Context, id uint) (*domain.Profile, error) {
	var profile domain.Profile
	err := repository.Conn(ctx, r.db).
		Preload("User").
		Preload("ActivatedInviteCode").
		First(&profile, id).Error
	return handleFindError(err, &profile)
}

func (r *gormProfileRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error) {
	var profile domain.Profile
	err := repository.Conn(ctx, r.db).
		Preload("User").
		Preload("ActivatedInviteCode").
		Where("user_id = ?", userID).
		First(&profile).Error
	return handleFindError(err, &profile)
}

func (r *gormProfileRepository) FindByInviteCode(ctx context.Context, code string) (*domain.Profile, error) {
	var profile domain.Profile
	err := repository.Conn(ctx, r.db).
		Where("invite_code = ?", code).
		First(&profile).Error
	return handleFindError(err, &profile)
}

// SetActivatedInviteCode writes the activation edge only while it is unset.
// It reports false when the profile was already activated.
func (r *gormProfileRepository) SetActivatedInviteCode(ctx context.Context, profileID, targetID uint) (bool, error) {
	result := repository.Conn(ctx, r.db).
		Model(&domain.Profile{}).
		Where("id = ? AND activated_invite_code_id IS NULL", profileID).
		Update("activated_invite_code_id", targetID)
	if result.Error != nil {
		return false, fmt.Errorf("activate invite code: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// FindReferrerUserIDs lists the users whose profile activated profileID's code.
func (r *gormProfileRepository) FindReferrerUserIDs(ctx context.Context, profileID uint) ([]uint, error) {
	ids := []uint{}
	if err := repository.Conn(ctx, r.db).
		Model(&domain.Profile{}).
		Where("activated_invite_code_id = ?", profileID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find referrals: %w", err)
	}
	return ids, nil
}

// DeleteByUserID removes the user's profile. Profiles that activated its
// invite code keep existing with the activation edge set to NULL.
func (r *gormProfileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return repository.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var profile domain.Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("find profile for user %d: %w", userID, err)
		}
		if err := tx.Model(&domain.Profile{}).
			Where("activated_invite_code_id = ?", profile.ID).
			Update("activated_invite_code_id", nil).Error; err != nil {
			return fmt.Errorf("detach referrals of profile %d: %w", profile.ID, err)
		}
		if err := tx.Delete(&domain.Profile{}, profile.ID).Error; err != nil {
			return fmt.Errorf("delete profile %d: %w", profile.ID, err)
		}
		return nil
	})
}

func handleFindError(err error, profile *domain.Profile) (*domain.Profile, error) {
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	return nil, fmt.Errorf("query profile: %w", err)
}
