// File: internal/repository/verification/verification_repository.go
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository"
)

// VerificationRepository stores the outstanding code of each phone number.
type VerificationRepository interface {
	Replace(ctx context.Context, verification *domain.VerificationCode) error
	FindByPhone(ctx context.Context, phone string) (*domain.VerificationCode, error)
	Consume(ctx context.Context, id uint) (bool, error)
	DeleteByPhone(ctx context.Context, phone string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormVerificationRepository implements VerificationRepository using GORM
type GormVerificationRepository struct {
	db *gorm.DB
}

// NewGormVerificationRepository creates a new verification repository
func NewGormVerificationRepository(db *gorm.DB) VerificationRepository {
	return &GormVerificationRepository{db: db}
}

// Replace deletes any outstanding code for the phone and inserts the new
// one in a single transaction. A concurrent insert for the same phone makes
// it return domain.ErrConflict.
func (r *GormVerificationRepository) Replace(ctx context.Context, verification *domain.VerificationCode) error {
	err := repository.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone_number = ?", verification.PhoneNumber).
			Delete(&domain.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(verification).Error
	})
	if repository.IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("replace verification code: %w", err)
	}
	return nil
}

// FindByPhone returns nil, nil when no code is outstanding.
func (r *GormVerificationRepository) FindByPhone(ctx context.Context, phone string) (*domain.VerificationCode, error) {
	var verification domain.VerificationCode
	err := repository.Conn(ctx, r.db).
		Where("phone_number = ?", phone).
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find verification code: %w", err)
	}
	return &verification, nil
}

// Consume deletes the record by id. It reports false when another caller
// already consumed or replaced it.
func (r *GormVerificationRepository) Consume(ctx context.Context, id uint) (bool, error) {
	result := repository.Conn(ctx, r.db).
		Where("id = ?", id).
		Delete(&domain.VerificationCode{})
	if result.Error != nil {
		return false, fmt.Errorf("consume verification code: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// DeleteByPhone removes the outstanding code of a phone, if any.
func (r *GormVerificationRepository) DeleteByPhone(ctx context.Context, phone string) error {
	if err := repository.Conn(ctx, r.db).
		Where("phone_number = ?", phone).
		Delete(&domain.VerificationCode{}).Error; err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}

// DeleteExpired removes expired verification codes (cleanup job)
func (r *GormVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repository.Conn(ctx, r.db).
		Where("expires_at <= ?", now).
		Delete(&domain.VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired verification codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
